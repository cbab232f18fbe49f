package sink

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"sync"

	"github.com/logtape-go/logtape/core"
)

// Console writes records to the io.Writer given to NewConsole, colorizing
// by severity when the destination looks like a color-capable terminal.
// A Record's Message arrives already rendered, so Console only lays out
// timestamp, level, category, message, and properties.
type Console struct {
	mu             sync.Mutex
	w              io.Writer
	theme          *Theme
	useColor       bool
	showProperties bool
}

// ConsoleOption configures a Console sink.
type ConsoleOption func(*Console)

// WithTheme overrides the default theme.
func WithTheme(theme *Theme) ConsoleOption {
	return func(c *Console) { c.theme = theme }
}

// WithColor forces color on or off, overriding terminal auto-detection.
func WithColor(enabled bool) ConsoleOption {
	return func(c *Console) { c.useColor = enabled }
}

// WithProperties enables printing all of the record's properties, sorted
// by key, after the rendered message; properties the template
// interpolated are printed too.
func WithProperties(show bool) ConsoleOption {
	return func(c *Console) { c.showProperties = show }
}

// NewConsole creates a Console sink writing to w. Pass os.Stdout for the
// common case.
func NewConsole(w io.Writer, opts ...ConsoleOption) *Console {
	if w == os.Stdout || w == os.Stderr {
		enableWindowsVTProcessing()
	}
	c := &Console{
		w:        w,
		theme:    DefaultTheme(),
		useColor: shouldUseColor(w),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Emit writes one formatted line per record.
func (c *Console) Emit(record *core.Record) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintln(c.w, c.format(record))
}

// Close satisfies core.SyncReleaser; Console owns no resources to release.
func (c *Console) Close() error { return nil }

func (c *Console) format(record *core.Record) string {
	timestamp := colorize(fmt.Sprintf("[%s]", record.Timestamp.Format(c.theme.TimestampFormat)), c.theme.TimestampColor, c.useColor)
	levelPart := colorize(fmt.Sprintf(c.theme.LevelFormat, formatLevel(record.Level)), c.theme.GetLevelColor(record.Level), c.useColor)
	category := record.Category.String()
	message := colorize(record.RenderMessage(), c.theme.MessageColor, c.useColor)

	var b strings.Builder
	b.WriteString(timestamp)
	b.WriteByte(' ')
	b.WriteString(levelPart)
	b.WriteByte(' ')
	if category != "<root>" {
		b.WriteString(colorize(category, c.theme.PropertyKeyColor, c.useColor))
		b.WriteByte(' ')
	}
	b.WriteString(message)

	if c.showProperties && len(record.Properties) > 0 {
		keys := make([]string, 0, len(record.Properties))
		for k := range record.Properties {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		parts := make([]string, 0, len(keys))
		for _, k := range keys {
			key := colorize(k, c.theme.PropertyKeyColor, c.useColor)
			val := colorize(fmt.Sprintf("%v", record.Properties[k]), c.theme.PropertyValColor, c.useColor)
			parts = append(parts, fmt.Sprintf(c.theme.PropertyFormat, key, val))
		}
		fmt.Fprintf(&b, " {%s}", strings.Join(parts, ", "))
	}

	return b.String()
}
