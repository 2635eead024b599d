package cmd

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"mqttwire/agent/protocol/mqtt"
	"mqttwire/common"
)

// frameFixture is one captured frame: its wall-clock timestamp and its
// bytes, hex-encoded so the fixture stays a plain JSON text file.
type frameFixture struct {
	TimestampNs uint64 `json:"timestamp_ns"`
	Hex         string `json:"hex"`
}

// streamFixture holds one connection's two time-sorted frame streams.
type streamFixture struct {
	Requests  []frameFixture `json:"requests"`
	Responses []frameFixture `json:"responses"`
}

var replayCmd = &cobra.Command{
	Use:   "replay <fixture.json>",
	Short: "Parse and stitch a fixture of captured MQTT frames",
	Long: `Reads a JSON fixture of request and response frames, parses each with
the frame decoder, pairs them with the frame stitcher, and prints the
resulting records as JSON to stdout.`,
	Args: cobra.ExactArgs(1),
	RunE: runReplay,
}

func init() {
	rootCmd.AddCommand(replayCmd)
}

func runReplay(cmd *cobra.Command, args []string) error {
	raw, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("reading fixture: %w", err)
	}

	var fixture streamFixture
	if err := json.Unmarshal(raw, &fixture); err != nil {
		return fmt.Errorf("decoding fixture: %w", err)
	}

	reqs, err := parseFrames(mqtt.Request, fixture.Requests)
	if err != nil {
		return err
	}
	resps, err := parseFrames(mqtt.Response, fixture.Responses)
	if err != nil {
		return err
	}

	maxAgeNs := uint64(0)
	if maxAgeMs > 0 {
		maxAgeNs = uint64(maxAgeMs) * uint64(1_000_000)
	}

	records, errorCount := mqtt.ProcessFrames(&reqs, &resps, maxAgeNs)
	if errorCount > 0 {
		common.CLILog.Debugf("stitcher reported %d unmatched response(s) or aged-out request(s)", errorCount)
	}

	return printRecords(records, errorCount)
}

func parseFrames(direction mqtt.MessageType, fixtures []frameFixture) ([]*mqtt.Message, error) {
	messages := make([]*mqtt.Message, 0, len(fixtures))
	for i, f := range fixtures {
		buf, err := hex.DecodeString(f.Hex)
		if err != nil {
			return nil, fmt.Errorf("frame %d: decoding hex: %w", i, err)
		}

		result := mqtt.ParseFrame(direction, f.TimestampNs, buf)
		switch result.State {
		case mqtt.Success:
			messages = append(messages, result.Message)
		case mqtt.NeedsMoreData:
			common.CLILog.Warnf("frame %d: truncated, skipping", i)
		case mqtt.Invalid:
			boundary := mqtt.FindFrameBoundary(buf, 0)
			common.CLILog.Warnf("frame %d: invalid, recovered at offset %d", i, boundary)
		}
	}
	return messages, nil
}

type recordView struct {
	Request  *mqtt.Message `json:"request"`
	Response *mqtt.Message `json:"response"`
}

func printRecords(records []mqtt.Record, errorCount uint64) error {
	views := make([]recordView, 0, len(records))
	for _, r := range records {
		views = append(views, recordView{Request: r.Req, Response: r.Resp})
	}

	out, err := json.MarshalIndent(struct {
		Records []recordView `json:"records"`
		Errors  uint64       `json:"errors"`
	}{views, errorCount}, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding records: %w", err)
	}

	fmt.Println(string(out))
	return nil
}
