// Copyright 2020 Erin Shepherd
// SPDX-License-Identifier: ISC

package formats

import (
	"fmt"

	"go.e43.eu/bincodec"
	"go.e43.eu/bincodec/text"
)

const (
	cacheVersion    = 1
	cacheKindSingle = 1
	cacheKindBulk   = 2
)

// CacheEntry is a single cached value tagged with its generation:
//
//	"CASC" | ver(1) | kind(1) | gen(u64 be) | vlen(u32 be) | payload(vlen)
type CacheEntry struct {
	Gen     uint64 `json:"gen" yaml:"gen" cbor:"gen"`
	Payload []byte `json:"payload" yaml:"payload" cbor:"payload"`
}

// CacheBulkItem is one keyed entry of a CacheBulk
type CacheBulkItem struct {
	Key     string `json:"key" yaml:"key" cbor:"key"`
	Gen     uint64 `json:"gen" yaml:"gen" cbor:"gen"`
	Payload []byte `json:"payload" yaml:"payload" cbor:"payload"`
}

// CacheBulk is a batch of keyed entries:
//
//	"CASC" | ver(1) | kind(2) | n(u32 be) | item * n
//	item = klen(u16 be) | key(klen) | gen(u64 be) | vlen(u32 be) | payload(vlen)
//
// Keys are UTF-8 and never empty.
type CacheBulk struct {
	Items []CacheBulkItem `json:"items" yaml:"items" cbor:"items"`
}

func cacheHeader[T any](kind uint8) []bincodec.Step[T] {
	return []bincodec.Step[T]{
		bincodec.Anon[T](bincodec.Bind(text.FixedASCII(4), "CASC")),
		bincodec.Anon[T](bincodec.Bind(bincodec.U8(), cacheVersion)),
		bincodec.Anon[T](bincodec.Bind(bincodec.U8(), kind)),
	}
}

// cachePayload binds and reads a u32 be length prefixed payload
func cachePayload[T any](slot func(*T) *[]byte) []bincodec.Step[T] {
	return []bincodec.Step[T]{
		bincodec.Let[T]("vlen", bincodec.Integer[int](bincodec.U32BE()), func(env *bincodec.Env) int {
			return len(bincodec.Get[[]byte](env, "payload"))
		}),
		bincodec.FieldFunc("payload", slot, func(env *bincodec.Env) bincodec.Codec[[]byte] {
			return bincodec.Bytes(bincodec.Get[int](env, "vlen"))
		}),
	}
}

func nonEmpty(n int) (int, error) {
	if n == 0 {
		return 0, fmt.Errorf("empty key")
	}
	return n, nil
}

var CacheEntryCodec = bincodec.Record(append(
	append(cacheHeader[CacheEntry](cacheKindSingle),
		bincodec.Field("gen", func(e *CacheEntry) *uint64 { return &e.Gen }, bincodec.U64BE())),
	cachePayload(func(e *CacheEntry) *[]byte { return &e.Payload })...,
)...)

var cacheBulkItemCodec = bincodec.Record(append([]bincodec.Step[CacheBulkItem]{
	bincodec.Let[CacheBulkItem]("klen",
		bincodec.TryCast(bincodec.Integer[int](bincodec.U16BE()), nonEmpty, nonEmpty),
		func(env *bincodec.Env) int {
			return len(bincodec.Get[string](env, "key"))
		}),
	bincodec.FieldFunc("key", func(i *CacheBulkItem) *string { return &i.Key }, func(env *bincodec.Env) bincodec.Codec[string] {
		return text.FixedUTF8(bincodec.Get[int](env, "klen"))
	}),
	bincodec.Field("gen", func(i *CacheBulkItem) *uint64 { return &i.Gen }, bincodec.U64BE()),
}, cachePayload(func(i *CacheBulkItem) *[]byte { return &i.Payload })...)...)

var CacheBulkCodec = bincodec.Record(append(cacheHeader[CacheBulk](cacheKindBulk),
	bincodec.Let[CacheBulk]("n", bincodec.Integer[int](bincodec.U32BE()), func(env *bincodec.Env) int {
		return len(bincodec.Get[[]CacheBulkItem](env, "items"))
	}),
	bincodec.FieldFunc("items", func(b *CacheBulk) *[]CacheBulkItem { return &b.Items }, func(env *bincodec.Env) bincodec.Codec[[]CacheBulkItem] {
		return bincodec.Count(cacheBulkItemCodec, bincodec.Get[int](env, "n"))
	}),
)...)

func init() {
	register("cascache", "single cache entry", CacheEntryCodec)
	register("cascache-bulk", "bulk cache entries", CacheBulkCodec)
}
