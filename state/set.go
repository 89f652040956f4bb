package state

import (
	"errors"
	"fmt"
	"strconv"
)

// ErrOutOfRange is returned for positional access past the end of a set.
var ErrOutOfRange = errors.New("index out of range")

// Set is an ordered set of strings kept in a Store under one namespace. Membership,
// insertion and removal each touch a constant number of keys:
//
//	<ns>~len            member count
//	<ns>~at~<i>         member at position i
//	<ns>~pos~<member>   position+1 of member
//
// Removal moves the last member into the freed slot, so order is insertion order
// only until the first removal.
type Set struct {
	st Store
	ns string
}

// NewSet binds a set to namespace ns in st.
func NewSet(st Store, ns string) *Set {
	return &Set{st: st, ns: ns}
}

func (s *Set) lenKey() string { return s.ns + "~len" }
func (s *Set) atKey(i int) string { return s.ns + "~at~" + strconv.Itoa(i) }
func (s *Set) posKey(member string) string { return s.ns + "~pos~" + member }

// Len returns the number of members.
func (s *Set) Len() (int, error) {
	return readInt(s.st, s.lenKey())
}

// Contains reports whether member is in the set.
func (s *Set) Contains(member string) (bool, error) {
	pos, err := readInt(s.st, s.posKey(member))
	if err != nil {
		return false, err
	}
	return pos > 0, nil
}

// At returns the member at position i.
func (s *Set) At(i int) (string, error) {
	n, err := s.Len()
	if err != nil {
		return "", err
	}
	if i < 0 || i >= n {
		return "", fmt.Errorf("%w: position %d of %d", ErrOutOfRange, i, n)
	}
	value, err := s.st.GetState(s.atKey(i))
	if err != nil {
		return "", fmt.Errorf("failed to read set member: %v", err)
	}
	return string(value), nil
}

// Values returns the members in enumeration order. The result is never nil.
func (s *Set) Values() ([]string, error) {
	n, err := s.Len()
	if err != nil {
		return nil, err
	}
	values := make([]string, 0, n)
	for i := 0; i < n; i++ {
		value, err := s.st.GetState(s.atKey(i))
		if err != nil {
			return nil, fmt.Errorf("failed to read set member: %v", err)
		}
		values = append(values, string(value))
	}
	return values, nil
}

// Add appends member unless present. It reports whether the set changed.
func (s *Set) Add(member string) (bool, error) {
	present, err := s.Contains(member)
	if err != nil || present {
		return false, err
	}
	n, err := s.Len()
	if err != nil {
		return false, err
	}
	if err := s.st.PutState(s.atKey(n), []byte(member)); err != nil {
		return false, fmt.Errorf("failed to put set member: %v", err)
	}
	if err := writeInt(s.st, s.posKey(member), n+1); err != nil {
		return false, err
	}
	if err := writeInt(s.st, s.lenKey(), n+1); err != nil {
		return false, err
	}
	return true, nil
}

// Remove deletes member if present, moving the last member into its slot. It
// reports whether the set changed.
func (s *Set) Remove(member string) (bool, error) {
	pos, err := readInt(s.st, s.posKey(member))
	if err != nil || pos == 0 {
		return false, err
	}
	n, err := s.Len()
	if err != nil {
		return false, err
	}

	idx, last := pos-1, n-1
	if idx != last {
		moved, err := s.st.GetState(s.atKey(last))
		if err != nil {
			return false, fmt.Errorf("failed to read set member: %v", err)
		}
		if err := s.st.PutState(s.atKey(idx), moved); err != nil {
			return false, fmt.Errorf("failed to put set member: %v", err)
		}
		if err := writeInt(s.st, s.posKey(string(moved)), idx+1); err != nil {
			return false, err
		}
	}

	if err := s.st.DelState(s.atKey(last)); err != nil {
		return false, fmt.Errorf("failed to delete set member: %v", err)
	}
	if err := s.st.DelState(s.posKey(member)); err != nil {
		return false, fmt.Errorf("failed to delete set position: %v", err)
	}
	if err := writeInt(s.st, s.lenKey(), last); err != nil {
		return false, err
	}
	return true, nil
}

func readInt(st Store, key string) (int, error) {
	raw, err := st.GetState(key)
	if err != nil {
		return 0, fmt.Errorf("failed to read %s: %v", key, err)
	}
	if raw == nil {
		return 0, nil
	}
	n, err := strconv.Atoi(string(raw))
	if err != nil {
		return 0, fmt.Errorf("corrupt counter %s: %v", key, err)
	}
	return n, nil
}

func writeInt(st Store, key string, n int) error {
	if n == 0 {
		if err := st.DelState(key); err != nil {
			return fmt.Errorf("failed to delete %s: %v", key, err)
		}
		return nil
	}
	if err := st.PutState(key, []byte(strconv.Itoa(n))); err != nil {
		return fmt.Errorf("failed to put %s: %v", key, err)
	}
	return nil
}

// ReadCounter reads a decimal counter stored under key; a missing key is zero.
func ReadCounter(st Store, key string) (int, error) {
	return readInt(st, key)
}

// WriteCounter stores n under key. Zero removes the key.
func WriteCounter(st Store, key string, n int) error {
	return writeInt(st, key, n)
}
