package remote

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTopics(t *testing.T) {
	play, control := Topics("lab/meter/")
	assert.Equal(t, "lab/meter/play", play)
	assert.Equal(t, "lab/meter/control", control)
}

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		topic   string
		payload string
		want    Command
	}{
		{"next", "dacviz/play", "next", Command{Kind: KindNext}},
		{"next upper", "dacviz/play", " NEXT\n", Command{Kind: KindNext}},
		{"replay", "dacviz/play", "replay", Command{Kind: KindReplay}},
		{"restart", "dacviz/play", "restart", Command{Kind: KindReplay}},
		{"index", "dacviz/play", "2", Command{Kind: KindIndex, Index: 2}},
		{"name", "dacviz/play", "Startup", Command{Kind: KindPlay, Name: "Startup"}},
		{"loop on", "dacviz/control", "loop on", Command{Kind: KindLoop, Loop: true}},
		{"loop off", "dacviz/control", "Loop  OFF", Command{Kind: KindLoop}},
		{"clips", "dacviz/control", "clips ?", Command{Kind: KindList}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse("dacviz", tt.topic, []byte(tt.payload))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParse_Errors(t *testing.T) {
	_, err := Parse("dacviz", "dacviz/play", []byte("  "))
	assert.ErrorIs(t, err, ErrEmptyCommand)

	_, err = Parse("dacviz", "dacviz/play", []byte("-1"))
	assert.ErrorIs(t, err, ErrUnknownCommand)

	_, err = Parse("dacviz", "dacviz/control", []byte("loop maybe"))
	assert.ErrorIs(t, err, ErrUnknownCommand)

	_, err = Parse("dacviz", "dacviz/control", []byte("volume 3"))
	assert.ErrorIs(t, err, ErrUnknownCommand)

	_, err = Parse("dacviz", "other/play", []byte("next"))
	assert.ErrorIs(t, err, ErrUnknownTopic)
}

func TestCommand_String(t *testing.T) {
	assert.Equal(t, "play beep", Command{Kind: KindPlay, Name: "beep"}.String())
	assert.Equal(t, "play #3", Command{Kind: KindIndex, Index: 3}.String())
	assert.Equal(t, "loop on", Command{Kind: KindLoop, Loop: true}.String())
	assert.Equal(t, "next", Command{Kind: KindNext}.String())
	assert.Equal(t, "Kind(42)", Kind(42).String())
}

func TestClient_HandleQueuesCommands(t *testing.T) {
	c := New(Options{Broker: "tcp://localhost:1883", Prefix: "dacviz", Queue: 1})
	assert.Contains(t, c.clientID, "dacviz-")

	c.handle("dacviz/play", []byte("next"))
	c.handle("dacviz/play", []byte("replay")) // dropped, queue full
	c.handle("dacviz/control", []byte("bogus"))

	select {
	case cmd := <-c.Commands():
		assert.Equal(t, KindNext, cmd.Kind)
	default:
		t.Fatal("expected a queued command")
	}
	select {
	case cmd := <-c.Commands():
		t.Fatalf("unexpected command %v", cmd)
	default:
	}
}
