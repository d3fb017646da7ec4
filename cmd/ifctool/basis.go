package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Faultbox/ifcview/pkg/math"
)

func newBasisCommand() *cobra.Command {
	var direction bool

	cmd := &cobra.Command{
		Use:   "basis FROM TO x,y,z",
		Short: "Convert a vector between coordinate bases",
		Long: `Convert a vector between bases described by three signed axis labels.
BCF viewpoints use +X+Z-Y; the renderer uses +X+Y+Z.`,
		Example: "  ifctool basis +X+Z-Y +X+Y+Z 1,2,3",
		Args:    cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := math.BasisTransform(args[0], args[1])
			if err != nil {
				return err
			}
			v, err := parseVec3(args[2])
			if err != nil {
				return err
			}

			out := m.TransformPoint(v)
			if direction {
				out = m.TransformDirection(v)
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatVec3(out))
			return nil
		},
	}

	cmd.Flags().BoolVarP(&direction, "direction", "d", false, "Treat the vector as a direction")
	return cmd
}
