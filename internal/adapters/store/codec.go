package store

import (
	"encoding/json"
	"fmt"
	"math"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/fxamacker/cbor/v2"
	"go.trai.ch/patterneta/internal/core/domain"
	"go.trai.ch/zerr"
)

// ModTimeKey is the reserved per-pattern key holding the freshness marker.
const ModTimeKey = "_mtime"

// wireCache is the persisted shape of the cache: pattern -> speed or ModTimeKey -> number.
type wireCache map[string]map[string]float64

// Codec encodes and decodes the persisted cache.
type Codec interface {
	Encode(w wireCache) ([]byte, error)
	Decode(data []byte) (wireCache, error)
}

// CodecFor picks the codec matching the extension of the cache file.
func CodecFor(path string) Codec {
	if strings.EqualFold(filepath.Ext(path), ".cbor") {
		return newCBORCodec()
	}
	return jsonCodec{}
}

type jsonCodec struct{}

func (jsonCodec) Encode(w wireCache) ([]byte, error) {
	return json.MarshalIndent(w, "", "  ")
}

func (jsonCodec) Decode(data []byte) (wireCache, error) {
	var w wireCache
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, err
	}
	return w, nil
}

type cborCodec struct {
	enc cbor.EncMode
	dec cbor.DecMode
}

func newCBORCodec() cborCodec {
	enc, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("failed to create cache CBOR encoder mode: %v", err))
	}
	dec, err := cbor.DecOptions{DupMapKey: cbor.DupMapKeyQuiet}.DecMode()
	if err != nil {
		panic(fmt.Sprintf("failed to create cache CBOR decoder mode: %v", err))
	}
	return cborCodec{enc: enc, dec: dec}
}

func (c cborCodec) Encode(w wireCache) ([]byte, error) {
	return c.enc.Marshal(w)
}

func (c cborCodec) Decode(data []byte) (wireCache, error) {
	var w wireCache
	if err := c.dec.Unmarshal(data, &w); err != nil {
		return nil, err
	}
	return w, nil
}

// toWire converts the cache into its persisted shape.
func toWire(c domain.Cache) wireCache {
	w := make(wireCache, len(c))
	for key, rec := range c {
		entry := make(map[string]float64, len(rec.Durations)+1)
		for speed, seconds := range rec.Durations {
			entry[strconv.Itoa(speed)] = seconds
		}
		if rec.ModTime != nil {
			entry[ModTimeKey] = float64(*rec.ModTime)
		}
		w[string(key)] = entry
	}
	return w
}

// fromWire converts a decoded file into a cache.
// Speed keys written as floats ("100.0") are accepted and normalized to integers.
// Entries without any duration are dropped.
func fromWire(w wireCache) (domain.Cache, error) {
	c := make(domain.Cache, len(w))
	for name, entry := range w {
		rec := domain.NewCacheRecord()
		for k, v := range entry {
			if k == ModTimeKey {
				mt := domain.ModTime(v)
				rec.ModTime = &mt
				continue
			}
			speed, err := parseSpeedKey(k)
			if err != nil {
				return nil, zerr.With(zerr.With(err, "pattern", name), "key", k)
			}
			rec.Durations[speed] = v
		}
		if len(rec.Durations) == 0 {
			continue
		}
		c[domain.PatternKey(name)] = rec
	}
	return c, nil
}

func parseSpeedKey(k string) (int, error) {
	f, err := strconv.ParseFloat(k, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, domain.ErrInvalidSpeedKey
	}
	return int(f), nil
}
