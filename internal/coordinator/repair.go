// Discograph - Music Catalog and Social Graph API
// Copyright 2026 Discograph Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/discograph/discograph

package coordinator

import (
	"context"
	"fmt"
	"strconv"

	"github.com/discograph/discograph/internal/models"
	"github.com/discograph/discograph/internal/reconcile"
)

// Repair replays the unapplied steps of a recorded partial failure. The
// recorded step names the first mutation that failed; everything before it
// is known applied, so the replay resumes from that step and runs forward.
//
// Replays are guarded so repeating a repair converges: graph merges and
// deletes are idempotent by construction, catalog rating pushes check for
// an existing entry first, and friend-list pushes use set semantics. If
// the subject user was deleted between the failure and the repair, the
// event resolves as a no-op since the delete cascade already cleaned up.
//
// The follower counter is the one non-idempotent mutation. The delete
// cascade pulls each follow from the user's own list right after
// decrementing its artist and names that artist in the event, so a single
// failure plus a successful repair converges. A repair that itself fails
// between a counter write and the following step can still re-apply the
// counter on the next sweep.
func (c *Coordinator) Repair(ctx context.Context, event reconcile.Event) error {
	switch event.Action {
	case ActionRegister:
		return c.repairRegister(ctx, event)
	case ActionDelete:
		return c.repairDelete(ctx, event)
	case ActionRate:
		return c.repairRate(ctx, event)
	case ActionUnrate:
		return c.repairUnrate(ctx, event)
	case ActionFollow:
		return c.repairFollow(ctx, event)
	case ActionUnfollow:
		return c.repairUnfollow(ctx, event)
	case ActionBefriend:
		return c.repairBefriend(ctx, event)
	case ActionUnfriend:
		return c.repairUnfriend(ctx, event)
	default:
		return fmt.Errorf("unknown reconcile action %q", event.Action)
	}
}

func (c *Coordinator) repairRegister(ctx context.Context, event reconcile.Event) error {
	username := event.Keys["username"]
	exists, err := c.accounts.ExistsUser(ctx, username)
	if err != nil {
		return err
	}
	if !exists {
		// User deleted before the node ever existed; nothing to mirror.
		return nil
	}
	return c.graph.MergeUserNode(ctx, username)
}

func (c *Coordinator) repairDelete(ctx context.Context, event reconcile.Event) error {
	username := event.Keys["username"]

	// A decrement that landed without its follows-list pull would be
	// applied twice when the cascade re-reads the list; finish the pull
	// before re-running anything.
	if artistID := event.Keys["artist_id"]; artistID != "" && event.Step == reconcile.StepAccount {
		if err := c.accounts.PullFollow(ctx, username, artistID); err != nil {
			return err
		}
	}

	exists, err := c.accounts.ExistsUser(ctx, username)
	if err != nil {
		return err
	}
	if exists {
		// The user document survived the failure; re-run the cascade.
		return c.Delete(ctx, username)
	}
	return c.graph.DetachDeleteUser(ctx, username)
}

func (c *Coordinator) repairRate(ctx context.Context, event reconcile.Event) error {
	username := event.Keys["username"]
	releaseID := event.Keys["release_id"]
	rating, err := strconv.Atoi(event.Keys["rating"])
	if err != nil {
		return fmt.Errorf("corrupt reconcile event %s: %w", event.ID, err)
	}

	exists, err := c.accounts.ExistsUser(ctx, username)
	if err != nil {
		return err
	}
	if !exists {
		return nil
	}

	if event.Step == reconcile.StepCatalog {
		has, err := c.catalog.HasReleaseRating(ctx, releaseID, username)
		if err != nil {
			return err
		}
		if !has {
			catalogRating := models.Rating{Username: username, Rating: rating}
			if err := c.catalog.PushRating(ctx, releaseID, catalogRating); err != nil {
				return err
			}
		}
	}
	return c.graph.MergeRatedEdge(ctx, username, releaseID, rating)
}

func (c *Coordinator) repairUnrate(ctx context.Context, event reconcile.Event) error {
	username := event.Keys["username"]
	releaseID := event.Keys["release_id"]

	if event.Step == reconcile.StepCatalog {
		if err := c.catalog.PullRating(ctx, releaseID, username); err != nil {
			return err
		}
	}
	return c.graph.DeleteRatedEdge(ctx, username, releaseID)
}

func (c *Coordinator) repairFollow(ctx context.Context, event reconcile.Event) error {
	username := event.Keys["username"]
	artistID := event.Keys["artist_id"]

	exists, err := c.accounts.ExistsUser(ctx, username)
	if err != nil {
		return err
	}
	if !exists {
		return nil
	}

	if event.Step == reconcile.StepCatalog {
		if err := c.catalog.IncrementFollowers(ctx, artistID, 1); err != nil {
			return err
		}
	}
	return c.graph.MergeFollowsEdge(ctx, username, artistID)
}

func (c *Coordinator) repairUnfollow(ctx context.Context, event reconcile.Event) error {
	username := event.Keys["username"]
	artistID := event.Keys["artist_id"]

	if event.Step == reconcile.StepCatalog {
		if err := c.catalog.IncrementFollowers(ctx, artistID, -1); err != nil {
			return err
		}
	}
	return c.graph.DeleteFollowsEdge(ctx, username, artistID)
}

func (c *Coordinator) repairBefriend(ctx context.Context, event reconcile.Event) error {
	username := event.Keys["username"]
	friend := event.Keys["friend"]

	for _, name := range []string{username, friend} {
		exists, err := c.accounts.ExistsUser(ctx, name)
		if err != nil {
			return err
		}
		if !exists {
			// One side was deleted; the delete cascade removed the other
			// side's list entry and any edges.
			return nil
		}
	}

	if event.Step == reconcile.StepAccount {
		if err := c.accounts.PushFriend(ctx, friend, username); err != nil {
			return err
		}
	}
	return c.graph.MergeFriendship(ctx, username, friend)
}

func (c *Coordinator) repairUnfriend(ctx context.Context, event reconcile.Event) error {
	username := event.Keys["username"]
	friend := event.Keys["friend"]

	if event.Step == reconcile.StepAccount {
		if err := c.accounts.PullFriend(ctx, friend, username); err != nil {
			return err
		}
	}
	return c.graph.DeleteFriendship(ctx, username, friend)
}
