package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	cmdcommon "pollpulse.io/pollpulse/cmd/pollpulse/common"
	"pollpulse.io/pollpulse/lib/client"
	"pollpulse.io/pollpulse/lib/common"
)

var (
	flagServerURL string = common.GetENVValue("POLLPULSE_SERVER_URL", "http://127.0.0.1:12345")
	flagFormat    string = common.GetENVValue("POLLPULSE_FORMAT", "json")

	flagQuestion    string
	flagOptions     cmdcommon.ListFlags
	flagCreatedBy   string
	flagOptionID    string
	flagFingerprint string
)

var pollCmd = &cobra.Command{
	Use:   "poll",
	Short: "Talk to a running pollpulse server",
	Run: func(c *cobra.Command, args []string) {
		if len(args) < 1 {
			c.Usage()
		}
	},
}

func init() {
	pollCmd.PersistentFlags().StringVar(&flagServerURL, "server", flagServerURL, "server url")
	pollCmd.PersistentFlags().StringVar(&flagFormat, "format", flagFormat, "output format, {json, prettyjson, yaml}")

	pollCreateCmd := &cobra.Command{
		Use:   "create",
		Short: "Create a new poll",
		Run: func(c *cobra.Command, args []string) {
			if len(flagQuestion) < 1 {
				cmdcommon.PrintFlagsError(c, "--question", errors.New("--question must be given"))
			}
			p, err := newPollClient().CreatePoll(flagQuestion, []string(flagOptions), flagCreatedBy)
			if err != nil {
				printClientError(c, err)
			}
			encodeOut(c, p)
		},
	}
	pollCreateCmd.Flags().StringVar(&flagQuestion, "question", "", "poll question")
	pollCreateCmd.Flags().Var(&flagOptions, "option", "poll option text; repeat for each option")
	pollCreateCmd.Flags().StringVar(&flagCreatedBy, "created-by", "", "creator tag")

	pollGetCmd := &cobra.Command{
		Use:   "get <poll id>",
		Short: "Get one poll",
		Args:  cobra.ExactArgs(1),
		Run: func(c *cobra.Command, args []string) {
			p, err := newPollClient().LoadPoll(args[0])
			if err != nil {
				printClientError(c, err)
			}
			encodeOut(c, p)
		},
	}

	pollListCmd := &cobra.Command{
		Use:   "list",
		Short: "List polls",
		Run: func(c *cobra.Command, args []string) {
			page, err := newPollClient().LoadPolls()
			if err != nil {
				printClientError(c, err)
			}
			encodeOut(c, page.Embedded.Records)
		},
	}

	pollVoteCmd := &cobra.Command{
		Use:   "vote <poll id>",
		Short: "Submit a vote",
		Args:  cobra.ExactArgs(1),
		Run: func(c *cobra.Command, args []string) {
			p, err := newPollClient().SubmitVote(args[0], flagOptionID, flagFingerprint)
			if err != nil {
				printClientError(c, err)
			}
			encodeOut(c, p)
		},
	}
	pollVoteCmd.Flags().StringVar(&flagOptionID, "option-id", "", "option to vote for")
	pollVoteCmd.Flags().StringVar(&flagFingerprint, "fingerprint", "", "voter fingerprint")

	pollCloseCmd := &cobra.Command{
		Use:   "close <poll id>",
		Short: "Close a poll",
		Args:  cobra.ExactArgs(1),
		Run: func(c *cobra.Command, args []string) {
			p, err := newPollClient().ClosePoll(args[0])
			if err != nil {
				printClientError(c, err)
			}
			encodeOut(c, p)
		},
	}

	pollWatchCmd := &cobra.Command{
		Use:   "watch <poll id>",
		Short: "Stream live tallies of a poll",
		Args:  cobra.ExactArgs(1),
		Run: func(c *cobra.Command, args []string) {
			err := newPollClient().StreamPoll(context.Background(), args[0], func(ev client.PollEvent) {
				encodeOut(c, ev)
			})
			if err != nil {
				printClientError(c, err)
			}
		},
	}

	pollCmd.AddCommand(pollCreateCmd, pollGetCmd, pollListCmd, pollVoteCmd, pollCloseCmd, pollWatchCmd)
	rootCmd.AddCommand(pollCmd)
}

func newPollClient() *client.Client {
	return client.NewClient(flagServerURL)
}

func encodeOut(c *cobra.Command, v interface{}) {
	encode, ok := cmdcommon.DefaultEncodes[flagFormat]
	if !ok {
		cmdcommon.PrintFlagsError(c, "--format", fmt.Errorf("unknown format: %s", flagFormat))
	}
	if err := encode(v, os.Stdout); err != nil {
		cmdcommon.PrintError(c, err)
	}
}

func printClientError(c *cobra.Command, err error) {
	if clientError, ok := err.(client.Error); ok {
		fmt.Fprintf(os.Stderr, "error: %s\n", clientError.Problem.Title)
		os.Exit(1)
	}
	cmdcommon.PrintError(c, err)
}
