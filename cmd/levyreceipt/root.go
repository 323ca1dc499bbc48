package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/nappsnasarawa/levyreceipt"
	"github.com/nappsnasarawa/levyreceipt/doctpl"
	"github.com/nappsnasarawa/levyreceipt/internal/config"
	"github.com/nappsnasarawa/levyreceipt/internal/logger"
	"github.com/nappsnasarawa/levyreceipt/portal"
	"github.com/nappsnasarawa/levyreceipt/store"
	"github.com/spf13/cobra"
)

var version = "1.0.0"

// cfg is loaded in main before any command runs.
var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "levyreceipt",
	Short: "Generate NAPPS Nasarawa building levy receipts",
	Long: `levyreceipt renders PDF receipts for building levy payments made to the
NAPPS Nasarawa State secretariat.

Receipts are written to RECEIPT_OUTPUT_DIR, or to S3_BUCKET when it is set.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func execute() int {
	log := logger.WithComponent("cmd")
	if err := rootCmd.Execute(); err != nil {
		log.Error().Err(err).Msg("Command execution failed")
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

func init() {
	rootCmd.PersistentFlags().String("overflow", "", "overflow policy: fail or paginate (default RECEIPT_OVERFLOW)")
	rootCmd.PersistentFlags().String("code", "", "verification code: qr, pdf417 or none (default RECEIPT_CODE)")
	rootCmd.PersistentFlags().String("watermark", "", "reprint watermark drawn on every receipt, e.g. DUPLICATE")
}

// newRenderer builds a Renderer from the configuration and the persistent flags.
func newRenderer(cmd *cobra.Command) (*levyreceipt.Renderer, error) {
	overflowName, _ := cmd.Flags().GetString("overflow")
	if overflowName == "" {
		overflowName = cfg.Overflow
	}
	overflow, err := levyreceipt.ParseOverflowPolicy(overflowName)
	if err != nil {
		return nil, err
	}
	code, _ := cmd.Flags().GetString("code")
	if code == "" {
		code = cfg.Code
	}
	watermark, _ := cmd.Flags().GetString("watermark")

	opts := []levyreceipt.Option{
		levyreceipt.WithOverflowPolicy(overflow),
		levyreceipt.WithVerificationCode(code, cfg.VerifyURL),
		levyreceipt.WithBulkInterval(cfg.BulkInterval),
		levyreceipt.WithLogger(logger.WithComponent("renderer")),
	}
	if watermark != "" {
		opts = append(opts, levyreceipt.WithWatermark(watermark))
	}
	if cfg.LogoPath != "" {
		img, err := doctpl.LoadImageFile("logo", cfg.LogoPath)
		if err != nil {
			return nil, fmt.Errorf("loading logo: %w", err)
		}
		opts = append(opts, levyreceipt.WithLogo(img))
	}
	return levyreceipt.NewRenderer(opts...)
}

// newSaver returns the S3 store when S3_BUCKET is set and a directory store
// otherwise. dir overrides RECEIPT_OUTPUT_DIR.
func newSaver(ctx context.Context, dir string) (levyreceipt.Saver, string, error) {
	if cfg.UseS3() {
		if err := cfg.RequireS3(); err != nil {
			return nil, "", err
		}
		s, err := store.NewS3(ctx, store.S3Config{
			Bucket:       cfg.S3Bucket,
			Region:       cfg.S3Region,
			Endpoint:     cfg.S3Endpoint,
			AccessKey:    cfg.S3AccessKey,
			SecretKey:    cfg.S3SecretKey,
			UsePathStyle: cfg.S3PathStyle,
			Prefix:       cfg.S3Prefix,
		}, store.WithLogger(logger.WithComponent("s3")))
		if err != nil {
			return nil, "", err
		}
		if err := s.EnsureBucket(ctx); err != nil {
			return nil, "", err
		}
		return s, "s3://" + cfg.S3Bucket + "/" + cfg.S3Prefix, nil
	}
	if dir == "" {
		dir = cfg.OutputDir
	}
	return store.NewDir(dir), dir, nil
}

// newPortal returns a portal client, cached in Redis when REDIS_ADDR is set.
func newPortal(ctx context.Context) (*portal.Client, func(), error) {
	if err := cfg.RequirePortal(); err != nil {
		return nil, nil, err
	}
	log := logger.WithComponent("portal")
	opts := []portal.Option{portal.WithLogger(log)}
	closeFn := func() {}
	if cfg.RedisAddr != "" {
		cache, err := portal.NewRedisCache(ctx, portal.RedisConfig{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err != nil {
			log.Warn().Err(err).Msg("lookup cache disabled")
		} else {
			opts = append(opts, portal.WithCache(cache, cfg.CacheTTL))
			closeFn = func() { cache.Close() }
		}
	}
	c, err := portal.NewClient(cfg.PortalBaseURL, opts...)
	if err != nil {
		closeFn()
		return nil, nil, err
	}
	return c, closeFn, nil
}

// readInput reads path, or stdin when path is "-".
func readInput(path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(os.Stdin)
	}
	return os.ReadFile(path)
}

// readPayments decodes a single PaymentRecord or an array of them.
func readPayments(path string) ([]levyreceipt.PaymentRecord, error) {
	data, err := readInput(path)
	if err != nil {
		return nil, err
	}
	var many []levyreceipt.PaymentRecord
	if err := json.Unmarshal(data, &many); err == nil {
		return many, nil
	}
	var one levyreceipt.PaymentRecord
	if err := json.Unmarshal(data, &one); err != nil {
		return nil, fmt.Errorf("decoding %s: %w", path, err)
	}
	return []levyreceipt.PaymentRecord{one}, nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
