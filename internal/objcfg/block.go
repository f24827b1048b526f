package objcfg

import (
	"bufio"
	"io"
	"strconv"
	"strings"
)

// nameWidth pads attribute names so values line up
const nameWidth = 32

var (
	lineBreaks   = strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ")
	commentLines = strings.NewReplacer("\r\n", "\n", "\r", "\n")
)

// Attr is one "name value" line of a block
type Attr struct {
	Name  string
	Value string
}

// Block is one engine object definition
type Block struct {
	Type    string
	Comment string
	Attrs   []Attr
}

// NewBlock starts a definition of the given object type
func NewBlock(objectType string) *Block {
	return &Block{Type: objectType}
}

// Add appends an attribute. Empty values are dropped. Line breaks are
// replaced by spaces since an attribute ends at the end of its line.
func (b *Block) Add(name, value string) *Block {
	value = lineBreaks.Replace(value)
	if value == "" {
		return b
	}
	b.Attrs = append(b.Attrs, Attr{Name: name, Value: value})
	return b
}

// AddInt appends an integer attribute
func (b *Block) AddInt(name string, value int) *Block {
	return b.Add(name, strconv.Itoa(value))
}

// AddFloat appends a float attribute in its shortest form
func (b *Block) AddFloat(name string, value float64) *Block {
	return b.Add(name, strconv.FormatFloat(value, 'f', -1, 64))
}

// AddBool appends a 0/1 flag
func (b *Block) AddBool(name string, value bool) *Block {
	if value {
		return b.Add(name, "1")
	}
	return b.Add(name, "0")
}

// AddList appends a comma separated list attribute. Empty lists are dropped.
func (b *Block) AddList(name string, values []string) *Block {
	return b.Add(name, Join(values))
}

// Get returns the value of the first attribute with that name
func (b *Block) Get(name string) (string, bool) {
	for _, a := range b.Attrs {
		if a.Name == name {
			return a.Value, true
		}
	}
	return "", false
}

// WriteTo writes the block followed by a blank line
func (b *Block) WriteTo(w io.Writer) (int64, error) {
	bw := bufio.NewWriter(w)
	cw := &countingWriter{w: bw}

	if b.Comment != "" {
		for _, line := range strings.Split(commentLines.Replace(b.Comment), "\n") {
			cw.writeString("# " + line + "\n")
		}
	}
	cw.writeString("define " + b.Type + " {\n")
	for _, a := range b.Attrs {
		cw.writeString("    " + pad(a.Name) + a.Value + "\n")
	}
	cw.writeString("}\n\n")

	if cw.err != nil {
		return cw.n, cw.err
	}
	return cw.n, bw.Flush()
}

// String renders the block
func (b *Block) String() string {
	var sb strings.Builder
	_, _ = b.WriteTo(&sb)
	return sb.String()
}

// Join joins list values the way the engine expects them
func Join(values []string) string {
	return strings.Join(values, ",")
}

func pad(name string) string {
	if len(name) >= nameWidth {
		return name + " "
	}
	return name + strings.Repeat(" ", nameWidth-len(name))
}

type countingWriter struct {
	w   io.Writer
	n   int64
	err error
}

func (c *countingWriter) writeString(s string) {
	if c.err != nil {
		return
	}
	n, err := io.WriteString(c.w, s)
	c.n += int64(n)
	c.err = err
}
