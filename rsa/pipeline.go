package rsa

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"math/big"
	"sort"
	"sync"

	"github.com/schollz/progressbar/v3"

	"rsars/logging"
	"rsars/rsa/keys"
	"rsars/rsa/primegen"
)

// GroupSize returns the source block size B for a modulus: the largest
// power of two strictly below the modulus byte length. Blocks of B bytes
// are guaranteed to encode integers below m, and transformed blocks
// always fit in 2*B bytes.
func GroupSize(m *big.Int) int {
	byteLen := (m.BitLen() + 7) / 8
	p := 1
	for p < byteLen {
		p <<= 1
	}
	return p / 2
}

type pipelineJob struct {
	index int
	block []byte
}

type pipelineResult struct {
	index int
	data  []byte
}

// readBlock reads up to size bytes. A nil slice means clean end of
// input; a short slice is the final partial block.
func readBlock(r io.Reader, size int) ([]byte, error) {
	buf := make([]byte, size)
	n, err := io.ReadFull(r, buf)
	switch err {
	case nil:
		return buf, nil
	case io.EOF:
		return nil, nil
	case io.ErrUnexpectedEOF:
		return buf[:n], nil
	}
	return nil, err
}

// Process streams blocks from r through the modular exponentiation
// worker pool and writes them to w in input order.
//
// Encoding splits the input into blocks of B bytes and emits 2*B-byte
// cipher blocks behind an 8-byte little-endian plaintext length prefix.
// Decoding reads that prefix, consumes 2*B-byte cipher blocks and emits
// B-byte plaintext blocks, padding the tail with zero bytes up to the
// recorded length. The final block of either direction keeps its natural
// serialized length; all others are zero-padded to the block size.
func Process(r io.Reader, w io.Writer, mode RunMode, key keys.Key, threads int, silent bool) error {
	if threads < 1 {
		threads = 1
	}

	groupSize := GroupSize(key.M)
	var sourceLen, resultLen int
	switch mode {
	case ModeEncode:
		sourceLen, resultLen = groupSize, 2*groupSize
	case ModeDecode:
		sourceLen, resultLen = 2*groupSize, groupSize
	default:
		return fmt.Errorf("process: mode %s is not a cipher direction", mode)
	}
	logging.Infof("group size %d, input => output: %d => %d", groupSize, sourceLen, resultLen)

	var fileSize uint64
	if mode == ModeDecode {
		var prefix [8]byte
		if _, err := io.ReadFull(r, prefix[:]); err != nil {
			return fmt.Errorf("process: input lacks the 8-byte length prefix: %w", err)
		}
		fileSize = binary.LittleEndian.Uint64(prefix[:])
	}

	var blocks [][]byte
	var bytesRead uint64
	for {
		block, err := readBlock(r, sourceLen)
		if err != nil {
			return fmt.Errorf("process: reading input: %w", err)
		}
		if block == nil {
			break
		}
		bytesRead += uint64(len(block))
		blocks = append(blocks, block)
	}
	chunks := len(blocks)
	if fileSize == 0 {
		fileSize = bytesRead
	}
	logging.Infof("source chunks: %d", chunks)

	jobs := make(chan pipelineJob, threads)
	results := make(chan pipelineResult, threads)

	var wg sync.WaitGroup
	for i := 0; i < threads; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for job := range jobs {
				x := keys.ParseLE(job.block)
				y := primegen.PowMod(x, key.Base, key.M)
				data := keys.BytesLE(y)
				if fill := resultLen - len(data); fill > 0 && job.index+1 != chunks {
					data = append(data, make([]byte, fill)...)
				}
				if job.index+1 != chunks && len(data) != resultLen {
					panic(fmt.Sprintf("process: block %d serialized to %d bytes, want %d",
						job.index, len(data), resultLen))
				}
				results <- pipelineResult{index: job.index, data: data}
			}
		}()
	}

	go func() {
		for i, block := range blocks {
			jobs <- pipelineJob{index: i, block: block}
		}
		close(jobs)
		wg.Wait()
		close(results)
	}()

	var bar *progressbar.ProgressBar
	if !silent {
		bar = progressbar.DefaultBytes(int64(chunks*sourceLen), mode.String())
	}

	collected := make([]pipelineResult, 0, chunks)
	for res := range results {
		collected = append(collected, res)
		if bar != nil {
			bar.Add(sourceLen)
		}
	}
	if bar != nil {
		bar.Finish()
	}

	sort.Slice(collected, func(i, j int) bool { return collected[i].index < collected[j].index })
	if len(collected) != chunks {
		panic(fmt.Sprintf("process: collected %d blocks, dispatched %d", len(collected), chunks))
	}
	for i := range collected {
		if collected[i].index != i {
			panic(fmt.Sprintf("process: block %d missing from result set", i))
		}
	}
	logging.Infof("read filesize: %d, data filesize: %d, res chunks: %d",
		bytesRead, fileSize, len(collected))

	bw := bufio.NewWriter(w)
	if mode == ModeEncode {
		var prefix [8]byte
		binary.LittleEndian.PutUint64(prefix[:], fileSize)
		if _, err := bw.Write(prefix[:]); err != nil {
			return fmt.Errorf("process: writing output: %w", err)
		}
	}

	var written uint64
	for _, res := range collected {
		if _, err := bw.Write(res.data); err != nil {
			return fmt.Errorf("process: writing output: %w", err)
		}
		written += uint64(len(res.data))
	}
	if mode == ModeDecode {
		// the final plaintext block may have shrunk; restore trailing
		// zero bytes up to the recorded length
		for ; written < fileSize; written++ {
			if err := bw.WriteByte(0); err != nil {
				return fmt.Errorf("process: writing output: %w", err)
			}
		}
	}
	return bw.Flush()
}
