package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/tvheim/bongtv/internal/bong"
	"github.com/tvheim/bongtv/internal/domain"
)

var flagURLQuality string

var recordingsCmd = &cobra.Command{
	Use:   "recordings",
	Short: "Manage your recording area",
	RunE:  recordingsListRun,
}

var recordingsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all recordings",
	RunE:  recordingsListRun,
}

var recordingsAddCmd = &cobra.Command{
	Use:   "add <broadcast-id>",
	Short: "Schedule a recording of a broadcast",
	Args:  cobra.ExactArgs(1),
	RunE:  recordingsAddRun,
}

var recordingsRmCmd = &cobra.Command{
	Use:   "rm <recording-id>",
	Short: "Delete a recording",
	Args:  cobra.ExactArgs(1),
	RunE:  recordingsRmRun,
}

var recordingsURLCmd = &cobra.Command{
	Use:   "url <recording-id>",
	Short: "Print the download URL of a finished recording",
	Args:  cobra.ExactArgs(1),
	RunE:  recordingsURLRun,
}

func init() {
	recordingsURLCmd.Flags().StringVar(&flagURLQuality, "quality", "", `Preferred quality order, e.g. "HD,HQ" (default from config)`)

	recordingsCmd.AddCommand(recordingsListCmd)
	recordingsCmd.AddCommand(recordingsAddCmd)
	recordingsCmd.AddCommand(recordingsRmCmd)
	recordingsCmd.AddCommand(recordingsURLCmd)
}

func recordingsListRun(cmd *cobra.Command, args []string) error {
	space, err := newSpace()
	if err != nil {
		return err
	}

	recordings, err := space.Recordings(cmd.Context())
	if err != nil {
		return fmt.Errorf("listing recordings: %w", err)
	}
	if len(recordings) == 0 {
		fmt.Println("No recordings.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSTART\tCHANNEL\tTITLE\tSTATUS")
	for _, r := range recordings {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n",
			r.RecordingID, r.StartsAt.Format("Mon 02.01. 15:04"), r.ChannelName, r.Title, r.Status)
	}
	return w.Flush()
}

func recordingsAddRun(cmd *cobra.Command, args []string) error {
	broadcastID, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("invalid broadcast id %q", args[0])
	}

	space, err := newSpace()
	if err != nil {
		return err
	}

	rec, err := space.CreateRecording(cmd.Context(), broadcastID)
	if err != nil {
		if errors.Is(err, bong.ErrCannotRecord) {
			return fmt.Errorf("broadcast %d cannot be recorded", broadcastID)
		}
		return fmt.Errorf("scheduling recording: %w", err)
	}

	fmt.Printf("Scheduled %q (recording %d).\n", rec.Title, rec.RecordingID)
	return nil
}

func recordingsRmRun(cmd *cobra.Command, args []string) error {
	recordingID, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("invalid recording id %q", args[0])
	}

	space, err := newSpace()
	if err != nil {
		return err
	}

	if err := space.DeleteRecording(cmd.Context(), recordingID); err != nil {
		return fmt.Errorf("deleting recording: %w", err)
	}
	fmt.Printf("Deleted recording %d.\n", recordingID)
	return nil
}

func recordingsURLRun(cmd *cobra.Command, args []string) error {
	recordingID, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("invalid recording id %q", args[0])
	}

	space, err := newSpace()
	if err != nil {
		return err
	}

	rec, err := space.Recording(cmd.Context(), recordingID)
	if err != nil {
		return fmt.Errorf("looking up recording: %w", err)
	}
	if rec == nil {
		return fmt.Errorf("no recording with id %d", recordingID)
	}

	prefs := flagURLQuality
	if prefs == "" {
		prefs = cfg.Playback.PreferredQualities
	}

	u, err := rec.URL(domain.ParseQualities(prefs)...)
	if err != nil {
		if errors.Is(err, domain.ErrNoPlayableURL) {
			return fmt.Errorf("recording %d has no file in the requested quality", recordingID)
		}
		return err
	}
	if u == "" {
		fmt.Printf("Recording %d is not finished yet (status %s).\n", recordingID, rec.Status)
		return nil
	}
	fmt.Println(u)
	return nil
}
