package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Faultbox/ifcview/internal/engine/camera"
	"github.com/Faultbox/ifcview/internal/engine/viewpoint"
)

func newViewpointCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "viewpoint FILE",
		Short: "Show where a BCF viewpoint puts the viewer camera",
		Long: `Apply a BCF viewpoint (.json, .yaml or .yml) to a default viewer camera
and print the resulting renderer-space camera state.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			vp, err := viewpoint.LoadFile(args[0])
			if err != nil {
				return err
			}

			cam := camera.NewPerspective(45, 1, 0.1, 1000)
			controls := camera.NewOrbitControls(cam)
			out := cmd.OutOrStdout()
			if !viewpoint.Apply(vp, cam, controls) {
				fmt.Fprintln(out, "viewpoint has no perspective camera, nothing to apply")
				return nil
			}

			fmt.Fprintf(out, "position: %s\n", formatVec3(cam.Position))
			fmt.Fprintf(out, "target:   %s\n", formatVec3(controls.Target))
			fmt.Fprintf(out, "fov:      %.4g\n", cam.FOV)
			return nil
		},
	}
	return cmd
}
