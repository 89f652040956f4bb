package main

import (
	"github.com/spf13/cobra"

	"github.com/mediblock/chaincode/engine"
	"github.com/mediblock/chaincode/utils"
)

type roleResult struct {
	Address string `json:"address"`
	Role    string `json:"role"`
	Code    uint8  `json:"code"`
}

type indexResult struct {
	Link   int  `json:"link"`
	Record *int `json:"record,omitempty"`
}

func registryCmds(o *options) []*cobra.Command {
	registerPatient := &cobra.Command{
		Use:   "register-patient [profile]",
		Short: "Register the sender as a patient",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return o.submit("register-patient", func(e *engine.Engine, tx engine.Tx) (interface{}, error) {
				return nil, e.RegisterPatient(tx, optional(args, 0))
			})
		},
	}

	registerDoctor := &cobra.Command{
		Use:   "register-doctor [profile]",
		Short: "Register the sender as a doctor",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return o.submit("register-doctor", func(e *engine.Engine, tx engine.Tx) (interface{}, error) {
				return nil, e.RegisterDoctor(tx, optional(args, 0))
			})
		},
	}

	role := &cobra.Command{
		Use:   "role <address>",
		Short: "Show the role of an address",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return o.query(func(e *engine.Engine, _ engine.Tx) (interface{}, error) {
				r, err := e.RoleOf(args[0])
				if err != nil {
					return nil, err
				}
				return roleResult{Address: args[0], Role: r.String(), Code: uint8(r)}, nil
			})
		},
	}

	profile := &cobra.Command{
		Use:   "profile <address>",
		Short: "Show the profile reference of a registered address",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return o.query(func(e *engine.Engine, _ engine.Tx) (interface{}, error) {
				return e.ProfileOf(args[0])
			})
		},
	}

	doctors := &cobra.Command{
		Use:   "doctors",
		Short: "List registered doctors",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return o.query(func(e *engine.Engine, _ engine.Tx) (interface{}, error) {
				return e.Doctors()
			})
		},
	}

	patients := &cobra.Command{
		Use:   "patients",
		Short: "List registered patients",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return o.query(func(e *engine.Engine, _ engine.Tx) (interface{}, error) {
				return e.Patients()
			})
		},
	}

	return []*cobra.Command{registerPatient, registerDoctor, role, profile, doctors, patients}
}

func appointmentCmds(o *options) []*cobra.Command {
	appoint := &cobra.Command{
		Use:   "appoint <doctor>",
		Short: "Appoint a doctor as the sending patient",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return o.submit("appoint", func(e *engine.Engine, tx engine.Tx) (interface{}, error) {
				return nil, e.AddAppointment(tx, args[0])
			})
		},
	}

	unappoint := &cobra.Command{
		Use:   "unappoint <doctor>",
		Short: "Remove an appointment of the sending patient",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return o.submit("unappoint", func(e *engine.Engine, tx engine.Tx) (interface{}, error) {
				return nil, e.RemoveAppointment(tx, args[0])
			})
		},
	}

	appointedDoctors := &cobra.Command{
		Use:   "appointed-doctors",
		Short: "List the doctors of the sending patient",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return o.query(func(e *engine.Engine, tx engine.Tx) (interface{}, error) {
				return e.AppointedDoctors(tx)
			})
		},
	}

	notAppointedDoctors := &cobra.Command{
		Use:   "not-appointed-doctors",
		Short: "List the doctors the sending patient has not appointed",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return o.query(func(e *engine.Engine, tx engine.Tx) (interface{}, error) {
				return e.NotAppointedDoctors(tx)
			})
		},
	}

	appointedPatients := &cobra.Command{
		Use:   "appointed-patients",
		Short: "List the patients of the sending doctor",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return o.query(func(e *engine.Engine, tx engine.Tx) (interface{}, error) {
				return e.AppointedPatients(tx)
			})
		},
	}

	return []*cobra.Command{appoint, unappoint, appointedDoctors, notAppointedDoctors, appointedPatients}
}

func recordCmds(o *options) []*cobra.Command {
	createLink := &cobra.Command{
		Use:   "create-link <patient> <title> <date> <data>",
		Short: "Open a new link for a patient with its first record",
		Args:  cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			return o.submit("create-link", func(e *engine.Engine, tx engine.Tx) (interface{}, error) {
				link, err := e.CreateLink(tx, args[0], args[1], args[2], args[3])
				if err != nil {
					return nil, err
				}
				return indexResult{Link: link}, nil
			})
		},
	}

	appendRecord := &cobra.Command{
		Use:   "append-record <patient> <link> <title> <date> <data>",
		Short: "Append a record to a link of a patient",
		Args:  cobra.ExactArgs(5),
		RunE: func(cmd *cobra.Command, args []string) error {
			link, err := intArg(args, 1, "link")
			if err != nil {
				return err
			}
			return o.submit("append-record", func(e *engine.Engine, tx engine.Tx) (interface{}, error) {
				record, err := e.AppendRecord(tx, args[0], link, args[2], args[3], args[4])
				if err != nil {
					return nil, err
				}
				return indexResult{Link: link, Record: &record}, nil
			})
		},
	}

	records := &cobra.Command{
		Use:   "records",
		Short: "List every record of the sending patient",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return o.query(func(e *engine.Engine, tx engine.Tx) (interface{}, error) {
				return e.RecordsOf(tx)
			})
		},
	}

	recordsWithAccess := &cobra.Command{
		Use:   "records-with-access <patient>",
		Short: "List the records of a patient the sending doctor may read",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return o.query(func(e *engine.Engine, tx engine.Tx) (interface{}, error) {
				return e.RecordsWithAccess(tx, args[0])
			})
		},
	}

	return []*cobra.Command{createLink, appendRecord, records, recordsWithAccess}
}

func accessCmds(o *options) []*cobra.Command {
	var patient string

	giveAccess := &cobra.Command{
		Use:   "give-access <link> <doctor> <duration>",
		Short: "Let a doctor read one link for a duration (seconds or e.g. 2h)",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			link, err := intArg(args, 0, "link")
			if err != nil {
				return err
			}
			duration, err := durationArg(args[2])
			if err != nil {
				return err
			}
			return o.submit("give-access", func(e *engine.Engine, tx engine.Tx) (interface{}, error) {
				return nil, e.GiveAccess(tx, owner(patient, tx), link, args[1], duration)
			})
		},
	}

	revokeAccess := &cobra.Command{
		Use:   "revoke-access <link> <doctor>",
		Short: "Revoke a doctor's access to one link",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			link, err := intArg(args, 0, "link")
			if err != nil {
				return err
			}
			return o.submit("revoke-access", func(e *engine.Engine, tx engine.Tx) (interface{}, error) {
				return nil, e.RevokeAccess(tx, owner(patient, tx), link, args[1])
			})
		},
	}

	hasAccess := &cobra.Command{
		Use:   "has-access <patient> <link> <doctor>",
		Short: "Check whether a doctor may read a link at --at",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			link, err := intArg(args, 1, "link")
			if err != nil {
				return err
			}
			return o.query(func(e *engine.Engine, tx engine.Tx) (interface{}, error) {
				return e.HasAccess(tx, args[0], link, args[2])
			})
		},
	}

	grants := &cobra.Command{
		Use:   "grants <link>",
		Short: "List the valid grants on one link",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			link, err := intArg(args, 0, "link")
			if err != nil {
				return err
			}
			return o.query(func(e *engine.Engine, tx engine.Tx) (interface{}, error) {
				return e.AccessGrants(tx, owner(patient, tx), link)
			})
		},
	}

	for _, cmd := range []*cobra.Command{giveAccess, revokeAccess, grants} {
		cmd.Flags().StringVar(&patient, "patient", "", "Patient acting on (default the sender)")
	}
	return []*cobra.Command{giveAccess, revokeAccess, hasAccess, grants}
}

func emergencyCmds(o *options) []*cobra.Command {
	var patient string

	add := &cobra.Command{
		Use:   "add-emergency <link> <record>",
		Short: "Flag a record for emergency disclosure",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			link, err := intArg(args, 0, "link")
			if err != nil {
				return err
			}
			record, err := intArg(args, 1, "record")
			if err != nil {
				return err
			}
			return o.submit("add-emergency", func(e *engine.Engine, tx engine.Tx) (interface{}, error) {
				return nil, e.AddEmergencyRecord(tx, owner(patient, tx), link, record)
			})
		},
	}

	remove := &cobra.Command{
		Use:   "remove-emergency <flag-index>",
		Short: "Remove the emergency flag at a position",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			index, err := intArg(args, 0, "flag-index")
			if err != nil {
				return err
			}
			return o.submit("remove-emergency", func(e *engine.Engine, tx engine.Tx) (interface{}, error) {
				return nil, e.RemoveEmergencyRecord(tx, owner(patient, tx), index)
			})
		},
	}

	list := &cobra.Command{
		Use:   "emergency-records <patient>",
		Short: "Show the flagged records of a patient",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return o.query(func(e *engine.Engine, _ engine.Tx) (interface{}, error) {
				return e.EmergencyRecordsOf(args[0])
			})
		},
	}

	for _, cmd := range []*cobra.Command{add, remove} {
		cmd.Flags().StringVar(&patient, "patient", "", "Patient acting on (default the sender)")
	}
	return []*cobra.Command{add, remove, list}
}

func addressCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "address <identity>",
		Short: "Derive the address of a client identity string",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return o.print(utils.AddressFromID(args[0]))
		},
	}
}

func owner(patient string, tx engine.Tx) string {
	if patient == "" {
		return tx.Sender
	}
	return patient
}

func optional(args []string, i int) string {
	if i < len(args) {
		return args[i]
	}
	return ""
}
