package cli

import (
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mrz1836/dcrvault/internal/codec"
	vaulterr "github.com/mrz1836/dcrvault/pkg/errors"
)

//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var (
	codecCmd = &cobra.Command{
		Use:   "codec",
		Short: "Convert between 5-bit values and base32 symbols",
		Long: `Map 5-bit values (0-31) to the base32 charset used in Decred address
payloads, and back.`,
	}

	codecEncodeCmd = &cobra.Command{
		Use:   "encode <value>...",
		Short: "Encode 5-bit values as base32 symbols",
		Long: `Encode 5-bit values as base32 symbols. Values may be given as separate
arguments or comma separated.

Example:
  dcrvault codec encode 0 1 2 31
  dcrvault codec encode 3,1,4,1,5`,
		Args: cobra.MinimumNArgs(1),
		RunE: withOp("codec.encode", runCodecEncode),
	}

	codecDecodeCmd = &cobra.Command{
		Use:   "decode <symbols>",
		Short: "Decode base32 symbols to 5-bit values",
		Args:  cobra.ExactArgs(1),
		RunE:  withOp("codec.decode", runCodecDecode),
	}
)

//nolint:gochecknoinits // Cobra CLI pattern requires init for command registration
func init() {
	rootCmd.AddCommand(codecCmd)
	codecCmd.AddCommand(codecEncodeCmd, codecDecodeCmd)
}

// codecResult is the JSON form of the codec commands.
type codecResult struct {
	Encoded string `json:"encoded"`
	Values  []int  `json:"values"`
}

func runCodecEncode(_ *cobra.Command, args []string) error {
	var values []int
	for _, arg := range args {
		for _, field := range strings.Split(arg, ",") {
			field = strings.TrimSpace(field)
			if field == "" {
				continue
			}
			v, err := strconv.Atoi(field)
			if err != nil {
				return vaulterr.WithDetails(vaulterr.ErrValidation, map[string]string{"value": field})
			}
			values = append(values, v)
		}
	}

	encoded, err := codec.Encode(values)
	if err != nil {
		return err
	}
	return formatter.Result(codecResult{Encoded: encoded, Values: values}, func(w io.Writer) error {
		outln(w, encoded)
		return nil
	})
}

func runCodecDecode(_ *cobra.Command, args []string) error {
	values, err := codec.Decode(strings.TrimSpace(args[0]))
	if err != nil {
		return err
	}
	return formatter.Result(codecResult{Encoded: args[0], Values: values}, func(w io.Writer) error {
		parts := make([]string, len(values))
		for i, v := range values {
			parts[i] = strconv.Itoa(v)
		}
		outln(w, strings.Join(parts, " "))
		return nil
	})
}
