package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/Faultbox/ifcview/internal/engine/viewpoint"
	"github.com/Faultbox/ifcview/internal/viewsync"
)

func newPushCommand() *cobra.Command {
	var (
		name    string
		timeout time.Duration
	)

	cmd := &cobra.Command{
		Use:     "push URL FILE",
		Short:   "Publish a BCF viewpoint to a sync hub room",
		Example: "  ifctool push ws://127.0.0.1:7420/rooms/review issue-42.json",
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			vp, err := viewpoint.LoadFile(args[1])
			if err != nil {
				return err
			}
			if vp.PerspectiveCamera == nil {
				return fmt.Errorf("%s has no perspective camera", args[1])
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()
			return push(ctx, args[0], name, vp)
		},
	}

	cmd.Flags().StringVar(&name, "name", "ifctool", "Name shown to other members")
	cmd.Flags().DurationVar(&timeout, "timeout", 10*time.Second, "Give up after this long")
	return cmd
}

func push(ctx context.Context, url, name string, vp viewpoint.Viewpoint) error {
	client, err := viewsync.Dial(ctx, url, name)
	if err != nil {
		return err
	}

	done := make(chan error, 1)
	go func() { done <- client.Run(ctx) }()

	if err := client.Publish(vp); err != nil {
		client.Close()
		return err
	}
	client.Close()
	return <-done
}
