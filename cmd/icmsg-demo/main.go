/*
 * Copyright 2026 The icmsg Authors
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// icmsg-demo exercises an inter-core channel between two processes over a
// shared-memory segment, or between two goroutines in loopback mode. The
// initiator sends a growing payload sequence; the responder answers with
// periodic fixed-size payloads. This mirrors the classic two-core IPC demo
// the channel was written for.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/coreipc/icmsg/internal/transport/icmsg"
)

var (
	flagRole       string
	flagSegment    string
	flagConfigPath string
	flagLoopback   bool
	flagVerbose    bool
)

func main() {
	root := &cobra.Command{
		Use:           "icmsg-demo",
		Short:         "Demo driver for the shared-memory inter-core channel",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Run one side of the channel demo",
		RunE:  runDemo,
	}
	runCmd.Flags().StringVar(&flagRole, "role", "initiator", "initiator or responder")
	runCmd.Flags().StringVar(&flagSegment, "segment", "demo", "shared segment name")
	runCmd.Flags().StringVar(&flagConfigPath, "config", "", "path to config.toml")
	runCmd.Flags().BoolVar(&flagLoopback, "loopback", false, "run both sides in this process")
	runCmd.Flags().BoolVarP(&flagVerbose, "verbose", "v", false, "debug logging")

	inspectCmd := &cobra.Command{
		Use:   "inspect",
		Short: "Print segment layout and ring occupancy",
		RunE:  runInspect,
	}
	inspectCmd.Flags().StringVar(&flagSegment, "segment", "demo", "shared segment name")

	root.AddCommand(runCmd, inspectCmd)

	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "icmsg-demo: %v\n", err)
		os.Exit(1)
	}
}

func newLogger(app string) zerolog.Logger {
	level := zerolog.InfoLevel
	if flagVerbose {
		level = zerolog.DebugLevel
	}
	output := zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	return zerolog.New(output).Level(level).With().Timestamp().Str("app", app).Logger()
}

type demoCallbacks struct {
	log zerolog.Logger
}

func (c *demoCallbacks) OnBound() {
	c.log.Info().Msg("bound")
}

func (c *demoCallbacks) OnReceived(p []byte) {
	c.log.Info().Int("len", len(p)).Hex("data", p).Msg("received")
}

func runDemo(cmd *cobra.Command, args []string) error {
	cfg, err := loadDemoConfig(flagConfigPath)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if flagLoopback {
		return runLoopback(ctx, cfg)
	}

	switch flagRole {
	case "initiator", "responder":
		return runPeer(ctx, cfg, flagRole)
	default:
		return fmt.Errorf("unknown role %q", flagRole)
	}
}

func runPeer(ctx context.Context, cfg demoConfig, role string) error {
	log := newLogger(role)

	var seg *icmsg.Segment
	var err error
	if role == "initiator" {
		seg, err = icmsg.CreateSegment(flagSegment, cfg.RegionLen)
	} else {
		seg, err = icmsg.OpenSegment(flagSegment)
	}
	if err != nil {
		return err
	}
	defer seg.Close()
	seg.SetReady()

	log.Info().Str("segment", flagSegment).Msg("waiting for peer")
	if err := seg.WaitPeerReady(ctx); err != nil {
		return err
	}

	memCfg, bell := seg.Config()
	tr, err := icmsg.Open(memCfg, bell, icmsg.WithLogger(log))
	if err != nil {
		return err
	}

	ep := icmsg.NewEndpoint(tr)
	if err := ep.Register(&demoCallbacks{log: log}); err != nil {
		return err
	}

	disp := icmsg.NewDispatcher(ep, cfg.PollInterval)
	go disp.Run(ctx)

	if err := ep.WaitBound(ctx); err != nil {
		return err
	}

	if role == "initiator" {
		return sendGrowing(ctx, log, ep, cfg)
	}
	return sendPeriodic(ctx, log, ep, cfg)
}

func runLoopback(ctx context.Context, cfg demoConfig) error {
	logA := newLogger("initiator")
	logB := newLogger("responder")

	regionAB := make([]byte, cfg.RegionLen)
	regionBA := make([]byte, cfg.RegionLen)
	bellA, bellB := icmsg.NewDoorbellPair()

	trA, err := icmsg.Open(icmsg.MemoryConfig{Send: regionAB, Recv: regionBA}, bellA,
		icmsg.WithLogger(logA))
	if err != nil {
		return err
	}
	trB, err := icmsg.Open(icmsg.MemoryConfig{Send: regionBA, Recv: regionAB}, bellB,
		icmsg.WithLogger(logB))
	if err != nil {
		return err
	}

	epA := icmsg.NewEndpoint(trA)
	epB := icmsg.NewEndpoint(trB)
	if err := epA.Register(&demoCallbacks{log: logA}); err != nil {
		return err
	}
	if err := epB.Register(&demoCallbacks{log: logB}); err != nil {
		return err
	}

	go icmsg.NewDispatcher(epA, cfg.PollInterval).Run(ctx)
	go icmsg.NewDispatcher(epB, cfg.PollInterval).Run(ctx)

	if err := epA.WaitBound(ctx); err != nil {
		return err
	}
	if err := epB.WaitBound(ctx); err != nil {
		return err
	}

	done := make(chan error, 1)
	go func() { done <- sendPeriodic(ctx, logB, epB, cfg) }()
	if err := sendGrowing(ctx, logA, epA, cfg); err != nil {
		return err
	}
	return <-done
}

// sendGrowing sends payloads [0x01], [0x01 0x02], ... up to SendCount bytes,
// retrying under backpressure without a bound: the demo assumes the peer
// drains.
func sendGrowing(ctx context.Context, log zerolog.Logger, ep *icmsg.Endpoint, cfg demoConfig) error {
	for n := 1; n <= cfg.SendCount; n++ {
		payload := make([]byte, n)
		for i := range payload {
			payload[i] = byte(i + 1)
		}
		if err := icmsg.SendRetry(ctx, ep, payload, icmsg.RetryPolicy{}); err != nil {
			return err
		}
		log.Info().Int("len", n).Hex("data", payload).Msg("sent")

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(cfg.Period):
		}
	}
	log.Info().Int("count", cfg.SendCount).Msg("demo complete")
	return nil
}

// sendPeriodic sends a rotating 8-byte payload until ctx is done, matching
// the remote side of the original two-core demo.
func sendPeriodic(ctx context.Context, log zerolog.Logger, ep *icmsg.Endpoint, cfg demoConfig) error {
	var msg [8]byte
	idx := 0
	next := byte(0)
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-time.After(cfg.Period):
		}

		if err := icmsg.SendRetry(ctx, ep, msg[:], icmsg.RetryPolicy{}); err != nil {
			return err
		}
		log.Info().Hex("data", msg[:]).Msg("sent")

		next++
		msg[idx] = next
		idx = (idx + 1) % len(msg)
	}
}

func runInspect(cmd *cobra.Command, args []string) error {
	seg, err := icmsg.OpenSegment(flagSegment)
	if err != nil {
		return err
	}
	defer seg.Close()

	memCfg, _ := seg.Config()
	tr, err := icmsg.Open(memCfg, icmsg.NopDoorbell{})
	if err != nil {
		return err
	}

	fmt.Printf("segment: %s (%d bytes)\n", seg.Path, len(seg.Mem))
	printRing("opener->creator", tr.TxState())
	printRing("creator->opener", tr.RxState())
	return nil
}

func printRing(dir string, st icmsg.RingState) {
	fmt.Printf("%-16s capacity=%d used=%d free=%d rd=%d wr=%d\n",
		dir, st.Capacity, st.Used, st.Free, st.ReadIdx, st.WriteIdx)
}
