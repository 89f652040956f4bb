package state

import (
	"fmt"
	"sort"
)

// Event is a named payload waiting to be published with a batch.
type Event struct {
	Name    string
	Payload []byte
}

// Batch buffers the writes of one transaction over a base Store. Reads see the
// buffered writes first, so a transaction observes its own changes even on a
// chaincode stub, where GetState only returns committed values. Nothing reaches the
// base store until Commit.
type Batch struct {
	base    Store
	puts    map[string][]byte
	dels    map[string]struct{}
	event   *Event
	settled bool
}

// NewBatch starts an empty batch over base.
func NewBatch(base Store) *Batch {
	return &Batch{
		base: base,
		puts: make(map[string][]byte),
		dels: make(map[string]struct{}),
	}
}

// GetState reads key through the buffer.
func (b *Batch) GetState(key string) ([]byte, error) {
	if value, ok := b.puts[key]; ok {
		return append([]byte(nil), value...), nil
	}
	if _, ok := b.dels[key]; ok {
		return nil, nil
	}
	return b.base.GetState(key)
}

// PutState buffers a write.
func (b *Batch) PutState(key string, value []byte) error {
	if b.settled {
		return fmt.Errorf("batch already settled")
	}
	delete(b.dels, key)
	b.puts[key] = append([]byte(nil), value...)
	return nil
}

// DelState buffers a delete.
func (b *Batch) DelState(key string) error {
	if b.settled {
		return fmt.Errorf("batch already settled")
	}
	delete(b.puts, key)
	b.dels[key] = struct{}{}
	return nil
}

// SetEvent records the event to publish on commit. A later call replaces an
// earlier one, matching the one-event-per-transaction rule of the peer.
func (b *Batch) SetEvent(name string, payload []byte) error {
	if b.settled {
		return fmt.Errorf("batch already settled")
	}
	b.event = &Event{Name: name, Payload: append([]byte(nil), payload...)}
	return nil
}

// Event returns the pending event, or nil.
func (b *Batch) Event() *Event {
	return b.event
}

// Size returns the number of buffered puts and deletes.
func (b *Batch) Size() int {
	return len(b.puts) + len(b.dels)
}

// Commit flushes the buffered writes to the base store in sorted key order, then
// publishes the pending event when the base store accepts events. Stores that
// implement BatchWriter receive the write set in one call.
func (b *Batch) Commit() error {
	if b.settled {
		return fmt.Errorf("batch already settled")
	}
	b.settled = true

	putKeys := make([]string, 0, len(b.puts))
	for key := range b.puts {
		putKeys = append(putKeys, key)
	}
	sort.Strings(putKeys)

	delKeys := make([]string, 0, len(b.dels))
	for key := range b.dels {
		delKeys = append(delKeys, key)
	}
	sort.Strings(delKeys)

	if writer, ok := b.base.(BatchWriter); ok {
		if err := writer.WriteBatch(b.puts, delKeys); err != nil {
			return fmt.Errorf("failed to write batch: %v", err)
		}
	} else {
		for _, key := range putKeys {
			if err := b.base.PutState(key, b.puts[key]); err != nil {
				return fmt.Errorf("failed to put state %s: %v", key, err)
			}
		}
		for _, key := range delKeys {
			if err := b.base.DelState(key); err != nil {
				return fmt.Errorf("failed to delete state %s: %v", key, err)
			}
		}
	}

	if b.event != nil {
		if sink, ok := b.base.(EventSink); ok {
			if err := sink.SetEvent(b.event.Name, b.event.Payload); err != nil {
				return fmt.Errorf("failed to emit event: %v", err)
			}
		}
	}
	return nil
}

// Discard drops every buffered write and the pending event.
func (b *Batch) Discard() {
	b.settled = true
	b.puts = make(map[string][]byte)
	b.dels = make(map[string]struct{})
	b.event = nil
}
