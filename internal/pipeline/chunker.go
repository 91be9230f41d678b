package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/baditaflorin/go_log_cruncher/internal/core/domain"
)

// chunk reads r sequentially and sends line-aligned buffers to out. Every sent
// buffer ends with LineDelimiter, except the last one when the input does not.
// A full buffer without any delimiter aborts with domain.ErrRecordTooLarge.
// Sending blocks while out is full. chunk never closes out.
func (p *Pipeline) chunk(ctx context.Context, r io.Reader, out chan<- *[]byte, stats *Stats) error {
	size := p.config.ChunkSize
	buf := p.buffers.Get()

	send := func(b *[]byte) error {
		select {
		case out <- b:
			stats.Chunks++
			return nil
		case <-ctx.Done():
			p.buffers.Put(b)
			return ctx.Err()
		}
	}

	for {
		if err := ctx.Err(); err != nil {
			p.buffers.Put(buf)
			return err
		}

		filled := len(*buf)
		data := (*buf)[:size]
		n, err := io.ReadFull(r, data[filled:])
		stats.BytesRead += int64(n)
		filled += n
		*buf = data[:filled]

		if err != nil {
			if !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
				p.buffers.Put(buf)
				return fmt.Errorf("reading input: %w", err)
			}
			// short read, the input is exhausted
			if filled == 0 {
				p.buffers.Put(buf)
				return nil
			}
			// bytes after the last delimiter are a final record, not a dropped fragment
			return send(buf)
		}

		delimiter := bytes.LastIndexByte(*buf, LineDelimiter)
		if delimiter < 0 {
			p.buffers.Put(buf)
			return fmt.Errorf("no line delimiter within %d bytes after offset %d: %w",
				size, stats.BytesRead-int64(filled), domain.ErrRecordTooLarge)
		}

		next := p.buffers.Get()
		*next = append((*next)[:0], (*buf)[delimiter+1:]...)
		*buf = (*buf)[:delimiter+1]

		if err := send(buf); err != nil {
			p.buffers.Put(next)
			return err
		}
		p.logger.Debug("Chunk emitted", "chunk", stats.Chunks, "bytes", delimiter+1, "carried", len(*next))
		buf = next
	}
}
