package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/coursepub/coursepub/internal/form"
)

// The upload command is a terminal front end for the admin upload form: it
// feeds a file or pasted text through the form controller and submits it to a
// running coursepub server.

type osFileReader struct{}

func (osFileReader) ReadFile(name string) (string, error) {
	data, err := os.ReadFile(name)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

type terminalConfirmer struct {
	assumeYes bool
	in        io.Reader
	out       io.Writer
}

func (t terminalConfirmer) ConfirmOverwrite() bool {
	if t.assumeYes {
		return true
	}
	fmt.Fprint(t.out, "Replace the existing document? [y/N]: ")
	line, err := bufio.NewReader(t.in).ReadString('\n')
	if err != nil {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes"
}

func main() {
	server := flag.String("server", "http://localhost:5020", "coursepub server base URL")
	file := flag.String("file", "", "markdown file to upload (reads stdin when neither -file nor -text is given)")
	text := flag.String("text", "", "document text to upload instead of a file")
	overwrite := flag.Bool("overwrite", false, "replace an existing document for the same course and format")
	yes := flag.Bool("yes", false, "skip the overwrite confirmation prompt")
	flag.Parse()

	ctrl := form.NewController(
		osFileReader{},
		terminalConfirmer{assumeYes: *yes, in: os.Stdin, out: os.Stderr},
		form.NewHTTPClient(*server),
	)

	switch {
	case *file != "":
		ctrl.SelectFile(*file)
	case *text != "":
		ctrl.EditText(*text)
	default:
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			fmt.Fprintf(os.Stderr, "read stdin: %v\n", err)
			os.Exit(1)
		}
		ctrl.EditText(string(data))
	}
	ctrl.SetOverwrite(*overwrite)

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	if err := ctrl.Submit(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}

	snap := ctrl.Snapshot()
	switch snap.State {
	case form.StateSuccess:
		rec := snap.Record
		fmt.Printf("published %s (course %s, format %s, last updated %s)\n",
			rec.BlobRef, rec.CourseID, rec.Format, rec.LastUpdated.Format(time.RFC3339))
		ctrl.Reset()
	case form.StateInvalid, form.StateFailed:
		for _, msg := range snap.Errors {
			fmt.Fprintf(os.Stderr, "error: %s\n", msg)
		}
		os.Exit(1)
	default:
		// overwrite confirmation declined
		fmt.Fprintln(os.Stderr, "canceled")
		os.Exit(1)
	}
}
