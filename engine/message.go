package engine

import (
	"fmt"

	"github.com/bgallie/enigma/cryptors"
)

// Message is an indicator and a body of alphabet symbols.  Before
// encryption the indicator is the three symbol message key; afterwards it
// is the six symbol transmitted indicator.
type Message struct {
	Indicator string
	Text      string
}

// NewMessage normalizes text and pairs it with indicator.
func NewMessage(indicator, text string) Message {
	return Message{Indicator: indicator, Text: cryptors.Normalize(text)}
}

func (m Message) String() string {
	return fmt.Sprintf("indicator: %s\ntext: %s", m.Indicator, m.Text)
}
