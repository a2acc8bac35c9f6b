package core

// Hand-written MUS serializers for the records persisted in the chunk store.
// Kept in the style of musgen output: one serializer value per type with
// Marshal/Unmarshal/Size/Skip methods.

import (
	"time"

	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/varint"
)

// IDMUS serializes core.ID values.
var IDMUS = idMUS{}

// ChunkMUS serializes Chunk records.
var ChunkMUS = chunkMUS{}

// RegistryEntryMUS serializes RegistryEntry records.
var RegistryEntryMUS = registryEntryMUS{}

// BoostRuleSetMUS serializes BoostRuleSet records.
var BoostRuleSetMUS = boostRuleSetMUS{}

type idMUS struct{}

func (idMUS) Marshal(id ID, bs []byte) (n int) {
	return varint.Uint64.Marshal(uint64(id), bs)
}

func (idMUS) Unmarshal(bs []byte) (id ID, n int, err error) {
	num, n, err := varint.Uint64.Unmarshal(bs)
	return ID(num), n, err
}

func (idMUS) Size(id ID) (size int) {
	return varint.Uint64.Size(uint64(id))
}

func (idMUS) Skip(bs []byte) (n int, err error) {
	return varint.Uint64.Skip(bs)
}

type chunkMUS struct{}

func (chunkMUS) Marshal(c Chunk, bs []byte) (n int) {
	n = varint.Uint64.Marshal(uint64(c.ID), bs)
	n += ord.String.Marshal(c.Text, bs[n:])
	n += ord.String.Marshal(c.Source, bs[n:])
	n += varint.Int.Marshal(c.Position, bs[n:])
	n += varint.Int.Marshal(len(c.Vector), bs[n:])
	for _, v := range c.Vector {
		n += varint.Float32.Marshal(v, bs[n:])
	}
	n += varint.Int64.Marshal(timeToMicro(c.IndexedAt), bs[n:])
	return n
}

func (chunkMUS) Unmarshal(bs []byte) (c Chunk, n int, err error) {
	var n1 int
	var id uint64
	id, n, err = varint.Uint64.Unmarshal(bs)
	if err != nil {
		return
	}
	c.ID = ID(id)
	c.Text, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	c.Source, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	c.Position, n1, err = varint.Int.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	var length int
	length, n1, err = varint.Int.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	if length > 0 {
		c.Vector = make([]float32, length)
		for i := 0; i < length; i++ {
			c.Vector[i], n1, err = varint.Float32.Unmarshal(bs[n:])
			n += n1
			if err != nil {
				return
			}
		}
	}
	var micro int64
	micro, n1, err = varint.Int64.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	c.IndexedAt = microToTime(micro)
	return
}

func (chunkMUS) Size(c Chunk) (size int) {
	size = varint.Uint64.Size(uint64(c.ID))
	size += ord.String.Size(c.Text)
	size += ord.String.Size(c.Source)
	size += varint.Int.Size(c.Position)
	size += varint.Int.Size(len(c.Vector))
	for _, v := range c.Vector {
		size += varint.Float32.Size(v)
	}
	size += varint.Int64.Size(timeToMicro(c.IndexedAt))
	return size
}

func (m chunkMUS) Skip(bs []byte) (n int, err error) {
	_, n, err = m.Unmarshal(bs)
	return
}

type registryEntryMUS struct{}

func (registryEntryMUS) Marshal(e RegistryEntry, bs []byte) (n int) {
	n = ord.String.Marshal(e.Source, bs)
	n += ord.String.Marshal(e.FilePath, bs[n:])
	n += varint.Int64.Marshal(e.Mtime, bs[n:])
	n += ord.String.Marshal(e.ContentHash, bs[n:])
	return n
}

func (registryEntryMUS) Unmarshal(bs []byte) (e RegistryEntry, n int, err error) {
	var n1 int
	e.Source, n, err = ord.String.Unmarshal(bs)
	if err != nil {
		return
	}
	e.FilePath, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	e.Mtime, n1, err = varint.Int64.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	e.ContentHash, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	return
}

func (registryEntryMUS) Size(e RegistryEntry) (size int) {
	size = ord.String.Size(e.Source)
	size += ord.String.Size(e.FilePath)
	size += varint.Int64.Size(e.Mtime)
	size += ord.String.Size(e.ContentHash)
	return size
}

func (m registryEntryMUS) Skip(bs []byte) (n int, err error) {
	_, n, err = m.Unmarshal(bs)
	return
}

type boostRuleSetMUS struct{}

func (boostRuleSetMUS) Marshal(b BoostRuleSet, bs []byte) (n int) {
	n = marshalWeights(b.Source, bs)
	n += marshalWeights(b.Category, bs[n:])
	return n
}

func (boostRuleSetMUS) Unmarshal(bs []byte) (b BoostRuleSet, n int, err error) {
	var n1 int
	b.Source, n, err = unmarshalWeights(bs)
	if err != nil {
		return
	}
	b.Category, n1, err = unmarshalWeights(bs[n:])
	n += n1
	return
}

func (boostRuleSetMUS) Size(b BoostRuleSet) (size int) {
	return sizeWeights(b.Source) + sizeWeights(b.Category)
}

func (m boostRuleSetMUS) Skip(bs []byte) (n int, err error) {
	_, n, err = m.Unmarshal(bs)
	return
}

func marshalWeights(weights map[string]float64, bs []byte) (n int) {
	n = varint.Int.Marshal(len(weights), bs)
	for k, v := range weights {
		n += ord.String.Marshal(k, bs[n:])
		n += varint.Float64.Marshal(v, bs[n:])
	}
	return n
}

func unmarshalWeights(bs []byte) (weights map[string]float64, n int, err error) {
	var length int
	length, n, err = varint.Int.Unmarshal(bs)
	if err != nil {
		return
	}
	weights = make(map[string]float64, length)
	var n1 int
	for i := 0; i < length; i++ {
		var k string
		var v float64
		k, n1, err = ord.String.Unmarshal(bs[n:])
		n += n1
		if err != nil {
			return
		}
		v, n1, err = varint.Float64.Unmarshal(bs[n:])
		n += n1
		if err != nil {
			return
		}
		weights[k] = v
	}
	return
}

func sizeWeights(weights map[string]float64) (size int) {
	size = varint.Int.Size(len(weights))
	for k, v := range weights {
		size += ord.String.Size(k)
		size += varint.Float64.Size(v)
	}
	return size
}

func timeToMicro(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixMicro()
}

func microToTime(micro int64) time.Time {
	if micro == 0 {
		return time.Time{}
	}
	return time.UnixMicro(micro).UTC()
}
