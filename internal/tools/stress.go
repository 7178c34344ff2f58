// Command stress exercises the decoder against pathological inputs: deep
// nesting, wide aggregates, large blob payloads and long message batches.
package main

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	resp3decoder "github.com/raniellyferreira/resp3-inmemory-decoder"
	"github.com/raniellyferreira/resp3-inmemory-decoder/protocol"
)

func main() {
	fmt.Println("Decoder stress scenarios")
	fmt.Println("========================")

	deepNestingLimited()
	deepNestingUnlimited()
	wideAggregate()
	largeBlob()
	messageBatch()
}

// deepNestingLimited verifies the depth limit rejects hostile nesting
// before the recursion goes anywhere near the stack.
func deepNestingLimited() {
	const depth = 100_000
	buf := nestedArrays(depth)

	dec, err := resp3decoder.New(resp3decoder.WithMaxDepth(64))
	if err != nil {
		log.Fatal(err)
	}

	start := time.Now()
	_, err = dec.Decode(buf)
	elapsed := time.Since(start)

	fmt.Printf("\n1. Deep nesting, limit 64 (%d levels, %d bytes):\n", depth, len(buf))
	fmt.Printf("   rejected in %v: %v\n", elapsed, err)
	if !errors.Is(err, protocol.ErrMaxDepthExceeded) {
		log.Fatalf("expected depth limit rejection, got: %v", err)
	}
}

// deepNestingUnlimited decodes a deep but survivable message with no limit
// configured. Go grows goroutine stacks on demand, so this succeeds; the
// point is to observe the cost.
func deepNestingUnlimited() {
	const depth = 10_000
	buf := nestedArrays(depth)

	start := time.Now()
	value, err := resp3decoder.Decode(buf)
	elapsed := time.Since(start)

	fmt.Printf("\n2. Deep nesting, no limit (%d levels):\n", depth)
	if err != nil {
		log.Fatalf("decode failed: %v", err)
	}
	fmt.Printf("   decoded in %v\n", elapsed)

	// Walk to the innermost element to confirm the tree is intact
	leaf := value
	levels := 0
	for leaf.Type == protocol.TypeArray {
		leaf = leaf.Array[0]
		levels++
	}
	fmt.Printf("   walked %d levels to %s %s\n", levels, leaf.Type, leaf)
}

// wideAggregate decodes a single array with a million elements.
func wideAggregate() {
	const count = 1_000_000
	var sb strings.Builder
	sb.Grow(count*4 + 16)
	fmt.Fprintf(&sb, "*%d\r\n", count)
	for i := 0; i < count; i++ {
		sb.WriteString(":7\r\n")
	}
	buf := []byte(sb.String())

	start := time.Now()
	value, err := resp3decoder.Decode(buf)
	elapsed := time.Since(start)

	fmt.Printf("\n3. Wide aggregate (%d elements, %d bytes):\n", count, len(buf))
	if err != nil {
		log.Fatalf("decode failed: %v", err)
	}
	fmt.Printf("   decoded in %v (%d elements)\n", elapsed, value.Len())
}

// largeBlob decodes a single 64 MiB blob string and confirms the payload
// aliases the input buffer rather than being copied.
func largeBlob() {
	const size = 64 << 20
	payload := strings.Repeat("x", size)
	buf := []byte(fmt.Sprintf("$%d\r\n%s\r\n", size, payload))

	start := time.Now()
	value, err := resp3decoder.Decode(buf)
	elapsed := time.Since(start)

	fmt.Printf("\n4. Large blob (%d MiB):\n", size>>20)
	if err != nil {
		log.Fatalf("decode failed: %v", err)
	}
	aliased := len(value.Data) == size && &value.Data[0] == &buf[len(buf)-size-2]
	fmt.Printf("   decoded in %v, payload aliases input: %t\n", elapsed, aliased)
}

// messageBatch decodes a long run of small messages sequentially from one
// buffer, the hot path for captured traffic dumps.
func messageBatch() {
	const count = 500_000
	var sb strings.Builder
	sb.Grow(count * 10)
	for i := 0; i < count; i++ {
		sb.WriteString("+OK\r\n:42\r\n")
	}
	buf := []byte(sb.String())

	dec, err := resp3decoder.New()
	if err != nil {
		log.Fatal(err)
	}

	start := time.Now()
	reader := dec.Reader(buf)
	decoded := 0
	for reader.Remaining() > 0 {
		if _, err := reader.ReadNext(); err != nil {
			log.Fatalf("decode failed at offset %d: %v", reader.Offset(), err)
		}
		decoded++
	}
	elapsed := time.Since(start)

	fmt.Printf("\n5. Message batch (%d messages, %d bytes):\n", decoded, len(buf))
	fmt.Printf("   decoded in %v (%.0f msg/s)\n", elapsed, float64(decoded)/elapsed.Seconds())
}

// nestedArrays builds depth levels of single-element arrays around one number
func nestedArrays(depth int) []byte {
	var sb strings.Builder
	sb.Grow(depth*4 + 4)
	for i := 0; i < depth; i++ {
		sb.WriteString("*1\r\n")
	}
	sb.WriteString(":1\r\n")
	return []byte(sb.String())
}
