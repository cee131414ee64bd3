// Package cache provides a predecoded-instruction cache built on Akita
// cache components.
//
// Program memory only changes through bulk loads, so each instruction word
// needs decoding once. The cache keeps decoded instructions in
// set-associative blocks whose tags and LRU state live in an Akita
// directory; a program load invalidates everything.
package cache

import (
	"github.com/pkg/errors"
	akitacache "github.com/sarchlab/akita/v4/mem/cache"

	"github.com/sarchlab/avrsim/insts"
)

// Config holds cache configuration parameters.
type Config struct {
	// Size is the number of program bytes the cache covers.
	Size int
	// Associativity is the number of ways.
	Associativity int
	// BlockSize is the number of program bytes per block. Must be even.
	BlockSize int
}

// DefaultConfig returns a cache covering 2 KiB of flash in 4-way sets of
// 32-byte blocks.
func DefaultConfig() Config {
	return Config{
		Size:          2 * 1024,
		Associativity: 4,
		BlockSize:     32,
	}
}

// Validate checks that the geometry describes at least one set.
func (c Config) Validate() error {
	if c.BlockSize < 2 || c.BlockSize%2 != 0 {
		return errors.Errorf("block size %d must be a positive even number", c.BlockSize)
	}
	if c.Associativity <= 0 {
		return errors.Errorf("associativity %d must be positive", c.Associativity)
	}
	if c.Size <= 0 || c.Size%(c.Associativity*c.BlockSize) != 0 {
		return errors.Errorf("size %d must be a positive multiple of associativity*block size (%d)",
			c.Size, c.Associativity*c.BlockSize)
	}
	return nil
}

// WordSource supplies program words on a miss.
type WordSource interface {
	// Fetch16 returns the instruction word at a byte address.
	Fetch16(addr uint16) uint16
}

// Statistics holds cache performance statistics.
type Statistics struct {
	Lookups   uint64
	Hits      uint64
	Misses    uint64
	Evictions uint64
}

// DecodeCache caches decoded instructions by program address.
type DecodeCache struct {
	config  Config
	decoder *insts.Decoder
	source  WordSource

	// Akita cache directory for tag/state management
	directory *akitacache.DirectoryImpl

	// Decoded words indexed by (setID * associativity + wayID)
	blocks [][]insts.Instruction

	stats Statistics
}

// New creates a decode cache reading words from source.
func New(config Config, decoder *insts.Decoder, source WordSource) (*DecodeCache, error) {
	if err := config.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid decode cache config")
	}

	numSets := config.Size / (config.Associativity * config.BlockSize)
	totalBlocks := numSets * config.Associativity
	wordsPerBlock := config.BlockSize / 2

	blocks := make([][]insts.Instruction, totalBlocks)
	for i := range blocks {
		blocks[i] = make([]insts.Instruction, wordsPerBlock)
	}

	return &DecodeCache{
		config:  config,
		decoder: decoder,
		source:  source,
		directory: akitacache.NewDirectory(
			numSets,
			config.Associativity,
			config.BlockSize,
			akitacache.NewLRUVictimFinder(),
		),
		blocks: blocks,
	}, nil
}

// Config returns the cache configuration.
func (c *DecodeCache) Config() Config {
	return c.config
}

// Stats returns cache statistics.
func (c *DecodeCache) Stats() Statistics {
	return c.stats
}

// blockIndex computes the index into blocks for a directory block.
func (c *DecodeCache) blockIndex(block *akitacache.Block) int {
	return block.SetID*c.config.Associativity + block.WayID
}

// Lookup returns the decoded instruction at byte address addr, decoding
// the whole surrounding block on a miss.
func (c *DecodeCache) Lookup(addr uint16) insts.Instruction {
	c.stats.Lookups++

	blockSize := uint64(c.config.BlockSize)
	blockAddr := (uint64(addr) / blockSize) * blockSize
	offset := (uint64(addr) - blockAddr) / 2

	block := c.directory.Lookup(0, blockAddr)
	if block != nil && block.IsValid {
		c.stats.Hits++
		c.directory.Visit(block)
		return c.blocks[c.blockIndex(block)][offset]
	}

	c.stats.Misses++

	victim := c.directory.FindVictim(blockAddr)
	if victim == nil {
		return c.decoder.Decode(c.source.Fetch16(addr))
	}
	if victim.IsValid {
		c.stats.Evictions++
	}

	words := c.blocks[c.blockIndex(victim)]
	for i := range words {
		words[i] = c.decoder.Decode(c.source.Fetch16(uint16(blockAddr) + uint16(2*i)))
	}

	victim.Tag = blockAddr
	victim.IsValid = true
	victim.IsDirty = false
	c.directory.Visit(victim)

	return words[offset]
}

// Invalidate drops every cached block. Call it after program memory
// changes.
func (c *DecodeCache) Invalidate() {
	c.directory.Reset()
}

// Reset invalidates all blocks and clears statistics.
func (c *DecodeCache) Reset() {
	c.Invalidate()
	c.stats = Statistics{}
}
