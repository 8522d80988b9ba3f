package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"questions-service/infrastructure/cache"
	"questions-service/infrastructure/di"
)

func cacheCmd(a *app, load func(*cobra.Command, []string) error) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect and purge the Redis read-through cache",
	}
	cmd.AddCommand(cachePingCmd(a, load))
	cmd.AddCommand(cachePurgeCmd(a, load))
	return cmd
}

func cachePingCmd(a *app, load func(*cobra.Command, []string) error) *cobra.Command {
	return &cobra.Command{
		Use:     "ping",
		Short:   "Check that REDIS_URL answers",
		Args:    cobra.NoArgs,
		PreRunE: load,
		RunE: func(cmd *cobra.Command, _ []string) error {
			redisCache, err := openRedis(cmd.Context(), a)
			if err != nil {
				return err
			}
			defer redisCache.Close()

			if err := redisCache.Ping(cmd.Context()); err != nil {
				return fmt.Errorf("redis is %s: %w", cache.StatusDisconnected, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "redis is %s\n", cache.StatusConnected)
			return nil
		},
	}
}

func cachePurgeCmd(a *app, load func(*cobra.Command, []string) error) *cobra.Command {
	return &cobra.Command{
		Use:   "purge <prefix>",
		Short: "Delete every cache entry whose key starts with prefix",
		Long: `Delete every cache entry whose key starts with prefix, for example
"questions:" or "flashcards:list:". CACHE_KEY_PREFIX is prepended.`,
		Args:    cobra.ExactArgs(1),
		PreRunE: load,
		RunE: func(cmd *cobra.Command, args []string) error {
			redisCache, err := openRedis(cmd.Context(), a)
			if err != nil {
				return err
			}
			defer redisCache.Close()

			if err := redisCache.Ping(cmd.Context()); err != nil {
				return fmt.Errorf("redis is %s: %w", cache.StatusDisconnected, err)
			}
			redisCache.DeletePrefix(cmd.Context(), args[0])
			fmt.Fprintf(cmd.OutOrStdout(), "Purged %q\n", args[0])
			return nil
		},
	}
}

// openRedis builds the same cache the service uses and insists on Redis
func openRedis(ctx context.Context, a *app) (*cache.RedisCache, error) {
	if a.cfg.Cache.RedisURL == "" {
		return nil, fmt.Errorf("REDIS_URL is required")
	}
	store, err := di.ProvideCache(ctx, a.cfg, di.ProvideMetrics(a.cfg), a.logger)
	if err != nil {
		return nil, err
	}
	redisCache, ok := store.(*cache.RedisCache)
	if !ok {
		store.Close()
		return nil, fmt.Errorf("REDIS_URL did not select the Redis cache")
	}
	return redisCache, nil
}
