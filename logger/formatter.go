package logger

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"runtime"
	"sort"
	"strings"
	"time"

	"github.com/kr/pretty"
	"github.com/logrusorgru/aurora"
	"github.com/sirupsen/logrus"
)

var baseTimestamp = time.Now()

// Width of the key column of the text format.
const keyWidth = 20

type jsonFormatter struct {
	conf JSONFormatConfig
	fmt  *logrus.JSONFormatter
}

func (f *jsonFormatter) Format(entry *logrus.Entry) ([]byte, error) {
	if f.fmt == nil {
		f.fmt = &logrus.JSONFormatter{
			DisableHTMLEscape: true,
			DisableTimestamp:  f.conf.DisableTimestamp,
			TimestampFormat:   f.conf.TimestampFormat,
		}
	}
	return f.fmt.Format(entry)
}

// textFormatter writes one colored block per entry:
//
//	scanner [cs1mq8...]  Submitting 0 with {run_id: 007447}
//	index                0
//
// Without a color terminal it falls back to JSON, so job logs and
// redirected output stay machine readable.
type textFormatter struct {
	TextFormatConfig
	json jsonFormatter
}

func isColorTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok || runtime.GOOS == "windows" {
		return false
	}
	st, err := f.Stat()
	return err == nil && st.Mode()&os.ModeCharDevice != 0
}

func levelColor(l logrus.Level) aurora.Color {
	switch l {
	case logrus.DebugLevel:
		return aurora.MagentaFg
	case logrus.WarnLevel:
		return aurora.YellowFg
	case logrus.ErrorLevel, logrus.FatalLevel, logrus.PanicLevel:
		return aurora.RedFg
	}
	return aurora.CyanFg
}

func (f *textFormatter) Format(entry *logrus.Entry) ([]byte, error) {
	colored := (f.ForceColors || isColorTerminal(entry.Logger.Out)) && !f.DisableColors
	if !colored {
		return f.json.Format(entry)
	}

	b := entry.Buffer
	if b == nil {
		b = &bytes.Buffer{}
	}
	color := levelColor(entry.Level)
	pad := "\n" + f.Indent + strings.Repeat(" ", keyWidth+1)

	head, _ := entry.Data["ns"].(string)
	if id, ok := entry.Data["scanID"].(string); ok {
		head += " [" + id + "]"
	}
	msg := strings.ReplaceAll(strings.TrimRight(entry.Message, "\n"), "\n", pad)
	fmt.Fprintf(b, "%s%-*s %s\n", f.Indent, keyWidth, aurora.Colorize(head, color|aurora.BoldFm), msg)

	data := f.fields(entry)
	for _, k := range f.sortKeys(data) {
		v := strings.ReplaceAll(fieldText(data[k]), "\n", pad)
		fmt.Fprintf(b, "%s%-*s %s\n", f.Indent, keyWidth, aurora.Colorize(k, color), v)
	}

	b.WriteByte('\n')
	return b.Bytes(), nil
}

// fields returns the entry's fields without those printed in the header.
func (f *textFormatter) fields(entry *logrus.Entry) logrus.Fields {
	data := logrus.Fields{}
	for k, v := range entry.Data {
		if k != "ns" && k != "scanID" {
			data[k] = v
		}
	}
	switch {
	case f.DisableTimestamp:
	case f.FullTimestamp:
		data["time"] = entry.Time.Format(f.TimestampFormat)
	default:
		// Seconds since start.
		data["time"] = fmt.Sprintf("%04d", int(entry.Time.Sub(baseTimestamp)/time.Second))
	}
	return data
}

func fieldText(v interface{}) string {
	switch x := v.(type) {
	case string:
		return x
	case bool, int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64, float32, float64:
		return fmt.Sprint(x)
	case error:
		return x.Error()
	case fmt.Stringer:
		return x.String()
	}
	return pretty.Sprint(v)
}

func (f *textFormatter) sortKeys(data logrus.Fields) []string {
	keys := make([]string, 0, len(data))
	for k := range data {
		keys = append(keys, k)
	}
	if !f.DisableSorting {
		sort.Strings(keys)
	}
	return keys
}
