package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"trustgraph/internal/trust/client"
)

const defaultServer = "http://localhost:8080"

func main() {
	if err := newRootCmd(os.Stdout).Execute(); err != nil {
		os.Exit(1)
	}
}

// newRootCmd builds the CLI. Every subcommand prints the server's JSON
// response, indented, to out.
func newRootCmd(out io.Writer) *cobra.Command {
	var server string

	root := &cobra.Command{
		Use:           "trustctl",
		Short:         "trustctl talks to a trust registry server",
		Long:          "trustctl registers, endorses, verifies, revokes and inspects DIDs in a trust registry.",
		SilenceUsage: true,
	}
	def := os.Getenv("TRUSTCTL_SERVER")
	if def == "" {
		def = defaultServer
	}
	root.PersistentFlags().StringVarP(&server, "server", "s", def, "trust registry base URL")

	api := func() *client.Client { return client.New(server) }
	emit := func(raw json.RawMessage, err error) error {
		if err != nil {
			return err
		}
		return writeJSON(out, raw)
	}

	root.AddCommand(
		registerCmd(api, emit),
		endorseCmd(api, emit),
		verifyCmd(api, emit),
		revokeCmd(api, emit),
		searchCmd(api, emit),
		getCmd(api, emit),
		chainCmd(api, emit),
		endorsementCmd(api, emit),
	)
	return root
}

type (
	clientFunc func() *client.Client
	emitFunc   func(json.RawMessage, error) error
)

func registerCmd(api clientFunc, emit emitFunc) *cobra.Command {
	var req client.RegisterRequest
	cmd := &cobra.Command{
		Use:   "register <subject>",
		Short: "Register a subject DID",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req.Subject = args[0]
			return emit(api().Register(cmd.Context(), req))
		},
	}
	cmd.Flags().StringVar(&req.Issuer, "issuer", "", "issuer DID")
	cmd.Flags().IntVar(&req.InitialTrustScore, "initial-score", 0, "initial trust score (0-100)")
	_ = cmd.MarkFlagRequired("issuer")
	return cmd
}

func endorseCmd(api clientFunc, emit emitFunc) *cobra.Command {
	var req client.EndorseRequest
	cmd := &cobra.Command{
		Use:   "endorse <endorser> <subject>",
		Short: "Endorse a subject with a trust level",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			req.Endorser, req.Subject = args[0], args[1]
			return emit(api().Endorse(cmd.Context(), req))
		},
	}
	cmd.Flags().Float64Var(&req.TrustLevel, "level", 0, "trust level (0-100)")
	cmd.Flags().StringVar(&req.Evidence, "evidence", "", "free-form evidence")
	_ = cmd.MarkFlagRequired("level")
	return cmd
}

func verifyCmd(api clientFunc, emit emitFunc) *cobra.Command {
	var minimum float64
	cmd := &cobra.Command{
		Use:   "verify <subject> <verifier>",
		Short: "Check whether a verifier may rely on a subject",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := client.VerifyRequest{Subject: args[0], Verifier: args[1]}
			if cmd.Flags().Changed("min-score") {
				req.MinimumScore = &minimum
			}
			return emit(api().Verify(cmd.Context(), req))
		},
	}
	cmd.Flags().Float64Var(&minimum, "min-score", 50, "minimum trust score")
	return cmd
}

func revokeCmd(api clientFunc, emit emitFunc) *cobra.Command {
	var reason string
	cmd := &cobra.Command{
		Use:   "revoke <subject> <revoker>",
		Short: "Revoke a subject on behalf of a revoker",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return emit(api().Revoke(cmd.Context(), client.RevokeRequest{Subject: args[0], Revoker: args[1], Reason: reason}))
		},
	}
	cmd.Flags().StringVar(&reason, "reason", "", "revocation reason")
	return cmd
}

func searchCmd(api clientFunc, emit emitFunc) *cobra.Command {
	var (
		p      client.SearchParams
		lo, hi float64
	)
	cmd := &cobra.Command{
		Use:   "search",
		Short: "Search trust records",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Flags().Changed("min-score") {
				p.MinScore = &lo
			}
			if cmd.Flags().Changed("max-score") {
				p.MaxScore = &hi
			}
			return emit(api().Search(cmd.Context(), p))
		},
	}
	cmd.Flags().StringVarP(&p.Query, "query", "q", "", "substring of the subject DID")
	cmd.Flags().Float64Var(&lo, "min-score", 0, "lowest trust score")
	cmd.Flags().Float64Var(&hi, "max-score", 100, "highest trust score")
	cmd.Flags().StringVar(&p.Status, "status", "", "active, revoked or suspended")
	cmd.Flags().IntVar(&p.Limit, "limit", 0, "maximum results")
	return cmd
}

func getCmd(api clientFunc, emit emitFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "get <did>",
		Short: "Show a DID's record, chain analysis and endorsement summary",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return emit(api().GetEntity(cmd.Context(), args[0]))
		},
	}
}

func chainCmd(api clientFunc, emit emitFunc) *cobra.Command {
	var depth int
	cmd := &cobra.Command{
		Use:   "chain <did>",
		Short: "Show a DID's trust chain",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return emit(api().GetChain(cmd.Context(), args[0], depth))
		},
	}
	cmd.Flags().IntVar(&depth, "max-depth", 0, "maximum chain depth (server default 5)")
	return cmd
}

func endorsementCmd(api clientFunc, emit emitFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "endorsement <id>",
		Short: "Look up an endorsement by id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return emit(api().GetEndorsement(cmd.Context(), args[0]))
		},
	}
}

func writeJSON(out io.Writer, raw json.RawMessage) error {
	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, "", "  "); err != nil {
		_, werr := fmt.Fprintln(out, string(raw))
		return werr
	}
	buf.WriteByte('\n')
	_, err := buf.WriteTo(out)
	return err
}
