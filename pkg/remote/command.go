// Package remote turns MQTT messages into playback commands.
package remote

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var (
	ErrEmptyCommand   = errors.New("empty command")
	ErrUnknownCommand = errors.New("unknown command")
	ErrUnknownTopic   = errors.New("unknown topic")
)

// Kind identifies a Command.
type Kind int

const (
	// KindPlay selects a clip by name and plays it from the start.
	KindPlay Kind = iota
	// KindIndex selects a clip by its position in the library.
	KindIndex
	// KindNext advances to the following clip, wrapping around.
	KindNext
	// KindReplay restarts the current clip.
	KindReplay
	// KindLoop switches looping of the current clip.
	KindLoop
	// KindList asks for the clip names to be published.
	KindList
)

func (k Kind) String() string {
	switch k {
	case KindPlay:
		return "play"
	case KindIndex:
		return "index"
	case KindNext:
		return "next"
	case KindReplay:
		return "replay"
	case KindLoop:
		return "loop"
	case KindList:
		return "list"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Command is a parsed remote request.
type Command struct {
	Kind  Kind
	Name  string // KindPlay
	Index int    // KindIndex
	Loop  bool   // KindLoop
}

func (c Command) String() string {
	switch c.Kind {
	case KindPlay:
		return "play " + c.Name
	case KindIndex:
		return "play #" + strconv.Itoa(c.Index)
	case KindLoop:
		if c.Loop {
			return "loop on"
		}
		return "loop off"
	default:
		return c.Kind.String()
	}
}

// Topics returns the play and control topics under prefix.
func Topics(prefix string) (play, control string) {
	prefix = strings.TrimSuffix(prefix, "/")
	return prefix + "/play", prefix + "/control"
}

// Parse decodes a message received on one of the prefix topics.
//
// The play topic accepts "next", "replay", a clip index or a clip name.
// The control topic accepts "loop on", "loop off" and "clips ?".
func Parse(prefix, topic string, payload []byte) (Command, error) {
	play, control := Topics(prefix)
	text := strings.TrimSpace(string(payload))

	switch topic {
	case play:
		return parsePlay(text)
	case control:
		return parseControl(text)
	default:
		return Command{}, fmt.Errorf("%w: %q", ErrUnknownTopic, topic)
	}
}

func parsePlay(text string) (Command, error) {
	if text == "" {
		return Command{}, ErrEmptyCommand
	}
	switch strings.ToLower(text) {
	case "next":
		return Command{Kind: KindNext}, nil
	case "replay", "restart":
		return Command{Kind: KindReplay}, nil
	}
	if i, err := strconv.Atoi(text); err == nil {
		if i < 0 {
			return Command{}, fmt.Errorf("%w: negative index %d", ErrUnknownCommand, i)
		}
		return Command{Kind: KindIndex, Index: i}, nil
	}
	return Command{Kind: KindPlay, Name: text}, nil
}

func parseControl(text string) (Command, error) {
	fields := strings.Fields(strings.ToLower(text))
	if len(fields) == 0 {
		return Command{}, ErrEmptyCommand
	}

	switch {
	case fields[0] == "loop" && len(fields) == 2:
		switch fields[1] {
		case "on", "1", "true":
			return Command{Kind: KindLoop, Loop: true}, nil
		case "off", "0", "false":
			return Command{Kind: KindLoop, Loop: false}, nil
		}
	case fields[0] == "clips" && (len(fields) == 1 || fields[1] == "?"):
		return Command{Kind: KindList}, nil
	}

	return Command{}, fmt.Errorf("%w: %q", ErrUnknownCommand, text)
}
