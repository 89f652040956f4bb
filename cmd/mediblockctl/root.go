package main

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/mediblock/chaincode/config"
	"github.com/mediblock/chaincode/engine"
	"github.com/mediblock/chaincode/logger"
	"github.com/mediblock/chaincode/state"
)

type options struct {
	ledger   string
	from     string
	at       int64
	atSet    bool
	logLevel string
	log      zerolog.Logger
	cmd      *cobra.Command
}

type operation func(e *engine.Engine, tx engine.Tx) (interface{}, error)

func newRootCmd() *cobra.Command {
	o := &options{log: zerolog.Nop()}

	root := &cobra.Command{
		Use:           "mediblockctl",
		Short:         "Run MediBlock operations against a local ledger",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return o.init(cmd)
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&o.ledger, "ledger", "", "LevelDB directory of the world state (default MEDIBLOCK_LEDGER_PATH)")
	flags.StringVar(&o.from, "from", "", "Address of the sender")
	flags.Int64Var(&o.at, "at", 0, "Transaction time in unix seconds (default the wall clock)")
	flags.StringVar(&o.logLevel, "log-level", "", "Log level (default MEDIBLOCK_LOG_LEVEL)")

	root.AddCommand(registryCmds(o)...)
	root.AddCommand(appointmentCmds(o)...)
	root.AddCommand(recordCmds(o)...)
	root.AddCommand(accessCmds(o)...)
	root.AddCommand(emergencyCmds(o)...)
	root.AddCommand(addressCmd(o))
	return root
}

func (o *options) init(cmd *cobra.Command) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if o.ledger == "" {
		o.ledger = cfg.LedgerPath
	}
	if o.logLevel == "" {
		o.logLevel = cfg.LogLevel
	}

	log, err := logger.NewWithWriter(cmd.ErrOrStderr(), o.logLevel, cfg.LogFormat)
	if err != nil {
		return err
	}
	o.log = log
	o.cmd = cmd
	o.atSet = cmd.Flags().Changed("at")
	return nil
}

func (o *options) tx() engine.Tx {
	now := time.Now()
	if o.atSet {
		now = time.Unix(o.at, 0)
	}
	return engine.Tx{Sender: o.from, Time: now}
}

// submit runs a mutating operation and commits it to the ledger in one batch.
func (o *options) submit(name string, op operation) error {
	store, err := state.OpenLevel(o.ledger)
	if err != nil {
		return err
	}
	defer store.Close()

	batch := state.NewBatch(store)
	result, err := op(engine.New(batch), o.tx())
	if err != nil {
		batch.Discard()
		o.log.Warn().Err(err).Str("operation", name).Str("sender", o.from).Msg("transaction rejected")
		return err
	}
	if err := batch.Commit(); err != nil {
		return err
	}

	logEvent := o.log.Info().Str("operation", name).Int("writes", batch.Size())
	if ev := batch.Event(); ev != nil {
		logEvent = logEvent.Str("event", ev.Name).RawJSON("payload", ev.Payload)
	}
	logEvent.Msg("transaction committed")
	return o.print(result)
}

// query runs a read-only operation.
func (o *options) query(op operation) error {
	store, err := state.OpenLevel(o.ledger)
	if err != nil {
		return err
	}
	defer store.Close()

	result, err := op(engine.New(store), o.tx())
	if err != nil {
		return err
	}
	return o.print(result)
}

func (o *options) print(result interface{}) error {
	if result == nil {
		return nil
	}
	out, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal result: %v", err)
	}
	_, err = fmt.Fprintln(o.cmd.OutOrStdout(), string(out))
	return err
}

func intArg(args []string, i int, name string) (int, error) {
	n, err := strconv.Atoi(args[i])
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be an integer: %q", engine.ErrInvalidArgument, name, args[i])
	}
	return n, nil
}

// durationArg accepts whole seconds or a Go duration such as 90m.
func durationArg(s string) (int64, error) {
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("%w: duration must be seconds or a duration: %q", engine.ErrInvalidArgument, s)
	}
	return int64(d / time.Second), nil
}
