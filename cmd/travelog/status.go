package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/forgo/travelog/api/internal/model"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Report backend health and entity counts",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		fmt.Println("backend:", cfg.Backend)
		if err := store.Ping(ctx); err != nil {
			return fmt.Errorf("ping: %w", err)
		}
		fmt.Println("ping:    ok")

		one := model.Page{Limit: 1}

		members, err := store.Members().Search(ctx, model.MemberFilter{IncludeInactive: true, Page: one})
		if err != nil {
			return fmt.Errorf("count members: %w", err)
		}
		places, err := store.Places().Search(ctx, model.PlaceFilter{Page: one})
		if err != nil {
			return fmt.Errorf("count places: %w", err)
		}
		reviews, err := store.Reviews().Search(ctx, model.ReviewFilter{Page: one})
		if err != nil {
			return fmt.Errorf("count reviews: %w", err)
		}
		posts, err := store.Posts().Search(ctx, model.PostFilter{Page: one})
		if err != nil {
			return fmt.Errorf("count posts: %w", err)
		}

		fmt.Println("members:", members.Total)
		fmt.Println("places: ", places.Total)
		fmt.Println("reviews:", reviews.Total)
		fmt.Println("posts:  ", posts.Total)
		return nil
	},
}
