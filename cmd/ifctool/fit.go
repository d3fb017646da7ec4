package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Faultbox/ifcview/internal/engine/camera"
	"github.com/Faultbox/ifcview/pkg/math"
)

func newFitCommand() *cobra.Command {
	var (
		minStr, maxStr, fromStr string
		fov                     float32
	)

	cmd := &cobra.Command{
		Use:   "fit",
		Short: "Compute the camera placement that frames a bounding box",
		Example: "  ifctool fit --min -1,-1,-1 --max 1,1,1 --fov 45 --from 8,8,8",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			lo, err := parseVec3(minStr)
			if err != nil {
				return err
			}
			hi, err := parseVec3(maxStr)
			if err != nil {
				return err
			}
			from, err := parseVec3(fromStr)
			if err != nil {
				return err
			}

			cam := camera.NewPerspective(fov, 1, 0.1, 1000)
			cam.Position = from
			res, err := camera.FitToFrame(cam, nil, math.Box3{Min: lo, Max: hi})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "center:   %s\n", formatVec3(res.Center))
			fmt.Fprintf(out, "distance: %.4g\n", res.Distance)
			fmt.Fprintf(out, "position: %s\n", formatVec3(res.Position))
			if res.UsedFallback {
				fmt.Fprintln(out, "note:     camera was above the center, used the +Z direction")
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&minStr, "min", "-1,-1,-1", "Box minimum corner")
	cmd.Flags().StringVar(&maxStr, "max", "1,1,1", "Box maximum corner")
	cmd.Flags().StringVar(&fromStr, "from", "8,8,8", "Current camera position")
	cmd.Flags().Float32Var(&fov, "fov", 45, "Vertical field of view in degrees")
	return cmd
}
