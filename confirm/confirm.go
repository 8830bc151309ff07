// Package confirm asks the user to approve a batch submission.
package confirm

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
)

// ErrAbort is returned when the user declines. It ends the process cleanly.
var ErrAbort = errors.New("submission aborted by user")

// Func shows summary to the user and returns nil to proceed or ErrAbort.
type Func func(summary string) error

// Always approves without asking.
func Always(summary string) error {
	return nil
}

// Print returns a Func that writes summary to out and approves.
func Print(out io.Writer) Func {
	return func(summary string) error {
		if summary != "" {
			fmt.Fprintln(out, summary)
		}
		return nil
	}
}

// Prompt returns a Func that writes to out and reads answers line by line
// from in. Only "y" and "n" are accepted, anything else asks again.
// Running out of input counts as "n".
func Prompt(in io.Reader, out io.Writer) Func {
	r := bufio.NewReader(in)
	return func(summary string) error {
		if summary != "" {
			fmt.Fprintln(out, summary)
		}
		fmt.Fprint(out, "Are you sure you would like to submit these settings? (y/n) ")
		for {
			line, err := r.ReadString('\n')
			answer := strings.TrimSpace(line)
			switch {
			case answer == "y":
				fmt.Fprintln(out, "Proceeding with the submission.")
				return nil
			case answer == "n":
				fmt.Fprintln(out, "Abort submission.")
				return ErrAbort
			case err != nil:
				fmt.Fprintln(out)
				return ErrAbort
			}
			fmt.Fprintf(out, "%s was not a valid input please use (y/n) for yes/no. ", answer)
		}
	}
}
