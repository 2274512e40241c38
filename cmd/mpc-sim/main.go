// Command mpc-sim runs a full ceremony between simulated devices: group setup, key generation,
// child key derivation and a signing session up to the base key exchanges.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/taurusgroup/mpc-vault/cmd/mpc-sim/simconfig"
	"github.com/taurusgroup/mpc-vault/internal/bip32"
	"github.com/taurusgroup/mpc-vault/internal/test"
	"github.com/taurusgroup/mpc-vault/internal/types"
	"github.com/taurusgroup/mpc-vault/pkg/party"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "mpc-sim:", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		configPath = flag.String("config", "", "JSON config file")
		n          = flag.Int("n", 0, "number of devices")
		threshold  = flag.Int("t", 0, "signing threshold")
		message    = flag.String("message", "", "message to sign")
		dataDir    = flag.String("datadir", "", "directory for the device stores, in memory if empty")
		logLevel   = flag.String("log-level", "", "zerolog level")
		signers    = flag.String("signers", "", "comma separated signer indices")
	)
	flag.Parse()

	cfg := simconfig.Default()
	if *configPath != "" {
		var err error
		if cfg, err = simconfig.Load(*configPath); err != nil {
			return err
		}
	}
	var err error
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "n":
			cfg.Devices = *n
		case "t":
			cfg.Threshold = *threshold
		case "message":
			cfg.Message = *message
		case "datadir":
			cfg.DataDir = *dataDir
		case "log-level":
			cfg.LogLevel = *logLevel
		case "signers":
			cfg.Signers, err = parseSigners(*signers)
		}
	})
	if err != nil {
		return err
	}
	if err = cfg.Validate(); err != nil {
		return err
	}

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("log level: %w", err)
	}
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
		Level(level).With().Timestamp().Logger()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	return simulate(ctx, cfg, log)
}

func simulate(ctx context.Context, cfg simconfig.Config, log zerolog.Logger) (err error) {
	h, err := test.NewHost(cfg.Devices, test.Options{DataDir: cfg.DataDir, Log: log})
	if err != nil {
		return err
	}
	defer func() {
		if cerr := h.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	setup, err := h.Setup(ctx, cfg.Threshold)
	if err != nil {
		return fmt.Errorf("group setup: %w", err)
	}
	fmt.Printf("group ID     %s\n", setup.GroupID)

	kg, err := h.KeyGen(ctx, setup)
	if err != nil {
		return fmt.Errorf("key generation: %w", err)
	}
	fmt.Printf("group key    %s\n", kg.GroupKey)

	if cfg.ChildPath != "" {
		path, err := bip32.PathFrom(cfg.ChildPath)
		if err != nil {
			return err
		}
		for i := range h.Members {
			child, err := h.ChildKey(ctx, kg, i, path)
			if err != nil {
				return fmt.Errorf("child key: %w", err)
			}
			if i == 0 {
				fmt.Printf("child key    %s %s\n", path, child)
			}
		}
	}

	indices := make([]party.Index, 0, cfg.Threshold)
	for _, s := range cfg.SignerIndices() {
		indices = append(indices, party.Index(s))
	}
	signing, err := h.Sign(ctx, setup, kg, []byte(cfg.Message), indices)
	if err != nil {
		return fmt.Errorf("signing: %w", err)
	}
	for i, key := range signing.GroupKeys {
		fmt.Printf("sharing %s    %s\n", types.Polynomial(i), key)
	}
	for _, idx := range signing.Signers {
		rank := signing.Ranks[idx]
		fmt.Printf("signer %-3d   rank %d, sender for %d, receiver for %d\n",
			idx, rank, len(signing.Signers)-1-rank, rank)
	}

	if err = h.SaveRecords(setup, kg); err != nil {
		return fmt.Errorf("records: %w", err)
	}
	for i := range h.Members {
		info, key, err := h.LoadRecords(i, setup.GroupID)
		if err != nil {
			return fmt.Errorf("records: %w", err)
		}
		id, err := info.ID()
		if err != nil || id != setup.GroupID || key.GroupPubKey != kg.GroupKey {
			return fmt.Errorf("records: member %d reloaded a different group", i)
		}
	}
	log.Info().Int("devices", len(h.Members)).Msg("records saved")
	return nil
}

func parseSigners(s string) ([]int, error) {
	var out []int
	for _, field := range strings.Split(s, ",") {
		idx, err := strconv.Atoi(strings.TrimSpace(field))
		if err != nil {
			return nil, fmt.Errorf("signers: %w", err)
		}
		out = append(out, idx)
	}
	return out, nil
}
