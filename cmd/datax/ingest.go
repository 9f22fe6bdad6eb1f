package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/ElizabethRoman12/Datax/internal/deltas"
	"github.com/ElizabethRoman12/Datax/internal/graph"
	"github.com/ElizabethRoman12/Datax/internal/ingest"
	"github.com/ElizabethRoman12/Datax/internal/linkedin"
	"github.com/ElizabethRoman12/Datax/internal/store"
	"github.com/ElizabethRoman12/Datax/internal/tiktok"
	"github.com/ElizabethRoman12/Datax/pkg/types"
)

// Ingest flags.
var (
	flagSkipDeltas bool
	flagSince      string
)

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Fetch engagement metrics from a platform API into the warehouse",
	Long: `Fetch pages, posts, and engagement counters from a platform's API
and upsert them into the warehouse. After a successful ingestion the
day-over-day deltas are recomputed, unless --skip-deltas is given.`,
}

var ingestFacebookCmd = &cobra.Command{
	Use:   "facebook",
	Short: "Ingest a Facebook page",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runIngest(cmd.Context(), types.PlatformFacebook)
	},
}

var ingestInstagramCmd = &cobra.Command{
	Use:   "instagram",
	Short: "Ingest an Instagram business account",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runIngest(cmd.Context(), types.PlatformInstagram)
	},
}

var ingestLinkedInCmd = &cobra.Command{
	Use:   "linkedin",
	Short: "Ingest a LinkedIn organization",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runIngest(cmd.Context(), types.PlatformLinkedIn)
	},
}

var ingestTikTokCmd = &cobra.Command{
	Use:   "tiktok",
	Short: "Ingest a TikTok Business account",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runIngest(cmd.Context(), types.PlatformTikTok)
	},
}

func init() {
	ingestCmd.PersistentFlags().BoolVar(&flagSkipDeltas, "skip-deltas", false, "do not recompute deltas after ingesting")
	ingestCmd.PersistentFlags().StringVar(&flagSince, "since", "", "only ingest posts published on or after this date (YYYY-MM-DD; default: January 1 of this year)")

	ingestCmd.AddCommand(ingestFacebookCmd)
	ingestCmd.AddCommand(ingestInstagramCmd)
	ingestCmd.AddCommand(ingestLinkedInCmd)
	ingestCmd.AddCommand(ingestTikTokCmd)
}

func runIngest(ctx context.Context, platform string) error {
	since, err := parseSince()
	if err != nil {
		return err
	}

	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	switch platform {
	case types.PlatformFacebook:
		err = runFacebook(ctx, st, since)
	case types.PlatformInstagram:
		err = runInstagram(ctx, st, since)
	case types.PlatformLinkedIn:
		err = runLinkedIn(ctx, st, since)
	case types.PlatformTikTok:
		err = runTikTok(ctx, st, since)
	default:
		err = fmt.Errorf("%w: %q", types.ErrInvalidPlatform, platform)
	}
	if err != nil {
		return err
	}

	if flagSkipDeltas {
		return nil
	}
	return deltas.New(st.DB()).Recompute(ctx)
}

func runFacebook(ctx context.Context, st *store.Store, since time.Time) error {
	pageID, err := requireConfig(appConfig, cfgKeyFBPageID)
	if err != nil {
		return err
	}
	token, err := requireConfig(appConfig, cfgKeyFBToken)
	if err != nil {
		return err
	}

	client := graph.New(graph.Config{
		BaseURL:     appConfig.GetString(cfgKeyGraphURL),
		AccessToken: token,
	})
	return ingest.NewFacebook(client, st, ingest.FacebookConfig{
		PageID: pageID,
		Since:  since,
	}).Run(ctx)
}

func runInstagram(ctx context.Context, st *store.Store, since time.Time) error {
	token, err := requireConfig(appConfig, cfgKeyIGToken)
	if err != nil {
		return err
	}
	userID := appConfig.GetString(cfgKeyIGUserID)
	pageID := appConfig.GetString(cfgKeyIGPageID)
	if userID == "" && pageID == "" {
		return fmt.Errorf("%w: %s or %s", errMissingConfig, cfgKeyIGUserID, cfgKeyIGPageID)
	}

	client := graph.New(graph.Config{
		BaseURL:     appConfig.GetString(cfgKeyGraphURL),
		AccessToken: token,
	})
	return ingest.NewInstagram(client, st, ingest.InstagramConfig{
		UserID: userID,
		PageID: pageID,
		Since:  since,
	}).Run(ctx)
}

func runLinkedIn(ctx context.Context, st *store.Store, since time.Time) error {
	orgID, err := requireConfig(appConfig, cfgKeyLIOrgID)
	if err != nil {
		return err
	}
	token, err := requireConfig(appConfig, cfgKeyLIToken)
	if err != nil {
		return err
	}

	client := linkedin.New(linkedin.Config{
		BaseURL:     appConfig.GetString(cfgKeyLinkedInURL),
		AccessToken: token,
	})
	return ingest.NewLinkedIn(client, st, ingest.LinkedInConfig{
		OrgID: orgID,
		Since: since,
	}).Run(ctx)
}

func runTikTok(ctx context.Context, st *store.Store, since time.Time) error {
	businessID, err := requireConfig(appConfig, cfgKeyTTKBizID)
	if err != nil {
		return err
	}
	token, err := requireConfig(appConfig, cfgKeyTTKToken)
	if err != nil {
		return err
	}

	client := tiktok.New(tiktok.Config{
		BaseURL:     appConfig.GetString(cfgKeyTikTokURL),
		AccessToken: token,
	})
	return ingest.NewTikTok(client, st, ingest.TikTokConfig{
		BusinessID: businessID,
		Since:      since,
	}).Run(ctx)
}

// parseSince parses the --since flag; empty means the ingester default.
func parseSince() (time.Time, error) {
	if flagSince == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(types.DateFormat, flagSince)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid --since date %q: %w", flagSince, err)
	}
	return t, nil
}
