// Package config loads graft settings from a YAML file and maps them onto the
// functional options of the buffers, session, codec and frame packages.
//
// Example graft.yaml:
//
//	buffers:
//	  max_segment_size: 4096
//	session:
//	  max_depth: 1000
//	  max_retained_entries: 16384
//	frame:
//	  compression: zstd
//	  max_payload_size: 67108864
package config

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/arloliu/graft/buffers"
	"github.com/arloliu/graft/codec"
	"github.com/arloliu/graft/errs"
	"github.com/arloliu/graft/format"
	"github.com/arloliu/graft/frame"
	"github.com/arloliu/graft/session"
)

type Config struct {
	// Buffers configures writer and reader segmentation.
	Buffers BuffersConfig `yaml:"buffers"`

	// Session configures per-operation state.
	Session SessionConfig `yaml:"session"`

	// Frame configures the envelope around serialized payloads.
	Frame FrameConfig `yaml:"frame"`
}

type BuffersConfig struct {
	// MaxSegmentSize caps a single writer segment allocation.
	// Default: 4096
	MaxSegmentSize int `yaml:"max_segment_size"`

	// ReaderSegmentSize re-splits input before reading. 0 keeps the input segments.
	ReaderSegmentSize int `yaml:"reader_segment_size"`
}

type SessionConfig struct {
	// MaxDepth bounds composite nesting within one operation.
	// Default: 131072
	MaxDepth int `yaml:"max_depth"`

	// MaxRetainedEntries is the table size above which a pooled session is dropped.
	// 0 disables the limit.
	MaxRetainedEntries int `yaml:"max_retained_entries"`
}

type FrameConfig struct {
	// Compression is one of none, zstd, s2 or lz4.
	// Default: none
	Compression string `yaml:"compression"`

	// MaxPayloadSize bounds the raw size of a decoded frame.
	MaxPayloadSize int `yaml:"max_payload_size"`
}

// Default returns the settings used when no file is given.
func Default() *Config {
	return &Config{
		Buffers: BuffersConfig{
			MaxSegmentSize: buffers.DefaultMaxSegmentSize,
		},
		Session: SessionConfig{
			MaxDepth:           session.DefaultMaxDepth,
			MaxRetainedEntries: session.DefaultMaxRetainedEntries,
		},
		Frame: FrameConfig{
			Compression:    "none",
			MaxPayloadSize: frame.DefaultMaxPayloadSize,
		},
	}
}

// Load reads path over the defaults and validates the result.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	return Parse(data)
}

// Parse decodes YAML data over the defaults and validates the result.
// Unknown keys are rejected.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if len(data) == 0 {
		return cfg, nil
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %v: %w", err, errs.ErrInvalidConfig)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks every value against its allowed range.
func (c *Config) Validate() error {
	if c.Buffers.MaxSegmentSize < 1 {
		return fmt.Errorf("buffers.max_segment_size %d: %w", c.Buffers.MaxSegmentSize, errs.ErrInvalidConfig)
	}
	if c.Buffers.ReaderSegmentSize < 0 {
		return fmt.Errorf("buffers.reader_segment_size %d: %w", c.Buffers.ReaderSegmentSize, errs.ErrInvalidConfig)
	}
	if c.Session.MaxDepth < 1 {
		return fmt.Errorf("session.max_depth %d: %w", c.Session.MaxDepth, errs.ErrInvalidConfig)
	}
	if c.Session.MaxRetainedEntries < 0 {
		return fmt.Errorf("session.max_retained_entries %d: %w", c.Session.MaxRetainedEntries, errs.ErrInvalidConfig)
	}
	if _, ok := format.ParseCompressionType(c.Frame.Compression); !ok {
		return fmt.Errorf("frame.compression %q: %w", c.Frame.Compression, errs.ErrInvalidConfig)
	}
	if c.Frame.MaxPayloadSize < 1 {
		return fmt.Errorf("frame.max_payload_size %d: %w", c.Frame.MaxPayloadSize, errs.ErrInvalidConfig)
	}

	return nil
}

// Marshal renders c as YAML.
func (c *Config) Marshal() ([]byte, error) {
	return yaml.Marshal(c)
}

// CompressionType returns the parsed frame compression. It assumes c is valid.
func (c *Config) CompressionType() format.CompressionType {
	ct, _ := format.ParseCompressionType(c.Frame.Compression)
	return ct
}

// SessionOptions returns the session settings as options.
func (c *Config) SessionOptions() []session.Option {
	return []session.Option{
		session.WithMaxDepth(c.Session.MaxDepth),
		session.WithMaxRetainedEntries(c.Session.MaxRetainedEntries),
	}
}

// RegistryOptions returns options for codec.NewRegistry, followed by extra.
func (c *Config) RegistryOptions(extra ...codec.RegistryOption) []codec.RegistryOption {
	return append([]codec.RegistryOption{codec.WithSessionOptions(c.SessionOptions()...)}, extra...)
}

// MarshalOptions returns the options of serializers built from this configuration.
func (c *Config) MarshalOptions() []codec.OperationOption {
	return []codec.OperationOption{codec.WithSegmentSize(c.Buffers.MaxSegmentSize)}
}

// ReaderOptions returns the reader segmentation settings.
func (c *Config) ReaderOptions() []buffers.ReaderOption {
	if c.Buffers.ReaderSegmentSize == 0 {
		return nil
	}

	return []buffers.ReaderOption{buffers.WithReaderSegmentSize(c.Buffers.ReaderSegmentSize)}
}

// EncoderOptions returns the frame encoder settings.
func (c *Config) EncoderOptions() []frame.EncoderOption {
	return []frame.EncoderOption{frame.WithCompression(c.CompressionType())}
}

// DecoderOptions returns the frame decoder settings.
func (c *Config) DecoderOptions() []frame.DecoderOption {
	return []frame.DecoderOption{frame.WithMaxPayloadSize(c.Frame.MaxPayloadSize)}
}
