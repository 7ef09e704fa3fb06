package clip

import (
	"fmt"
	"os"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/itohio/dacviz/pkg/pcm"
)

// wavFormatPCM is the WAVE_FORMAT_PCM format tag.
const wavFormatPCM = 1

// SaveWAV writes buf to path as a mono PCM wav file of the same depth.
func SaveWAV(path string, buf *pcm.Buffer) (err error) {
	if buf == nil || buf.Len() == 0 {
		return ErrNoSamples
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); err == nil && cerr != nil {
			err = fmt.Errorf("closing %s: %w", path, cerr)
		}
	}()

	data := make([]int, buf.Len())
	for i := range data {
		data[i] = buf.At(i)
	}

	depth := int(buf.Depth())
	enc := wav.NewEncoder(f, buf.SampleRate(), depth, 1, wavFormatPCM)
	ib := &goaudio.IntBuffer{
		Format:         &goaudio.Format{NumChannels: 1, SampleRate: buf.SampleRate()},
		Data:           data,
		SourceBitDepth: depth,
	}
	if err := enc.Write(ib); err != nil {
		return fmt.Errorf("encoding wav: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("finalizing wav: %w", err)
	}
	return nil
}
