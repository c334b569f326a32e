// Package command defines the closed set of state-mutation operations a
// reducer emits and a sink applies. Every variant is commutative or
// last-write-wins so that replay after a crash or a rollback never
// corrupts downstream state.
package command

import "github.com/scrollchain/scrolls/pkg/chain"

// Kind discriminates the Command union. Kept as a closed enum rather than
// an interface with type-switches scattered everywhere — the sink and any
// test helper exhaustively switch on Kind once.
type Kind int

const (
	KindBlockStarting Kind = iota
	KindBlockFinished
	KindAnyWriteWins
	KindLastWriteWins
	KindSetAdd
	KindSetRemove
	KindSortedSetAdd
	KindHashSetValue
	KindHashSetMulti
	KindHashCounter
	KindPNCounter
	KindUnsetKey
)

func (k Kind) String() string {
	switch k {
	case KindBlockStarting:
		return "BlockStarting"
	case KindBlockFinished:
		return "BlockFinished"
	case KindAnyWriteWins:
		return "AnyWriteWins"
	case KindLastWriteWins:
		return "LastWriteWins"
	case KindSetAdd:
		return "SetAdd"
	case KindSetRemove:
		return "SetRemove"
	case KindSortedSetAdd:
		return "SortedSetAdd"
	case KindHashSetValue:
		return "HashSetValue"
	case KindHashSetMulti:
		return "HashSetMulti"
	case KindHashCounter:
		return "HashCounter"
	case KindPNCounter:
		return "PNCounter"
	case KindUnsetKey:
		return "UnsetKey"
	default:
		return "Unknown"
	}
}

// Command is one state-mutation instruction destined for the sink. Only
// the fields relevant to Kind are populated; constructors below are the
// intended way to build one.
type Command struct {
	Kind Kind

	Point chain.Point // BlockStarting / BlockFinished

	Key   string
	Field string
	Value []byte

	Fields []string
	Values [][]byte

	Delta     int64 // SortedSetAdd, HashCounter, PNCounter
	Timestamp int64 // LastWriteWins
}

func BlockStarting(p chain.Point) Command {
	return Command{Kind: KindBlockStarting, Point: p}
}

func BlockFinished(p chain.Point) Command {
	return Command{Kind: KindBlockFinished, Point: p}
}

func AnyWriteWins(key string, value []byte) Command {
	return Command{Kind: KindAnyWriteWins, Key: key, Value: value}
}

func LastWriteWins(key string, value []byte, timestamp int64) Command {
	return Command{Kind: KindLastWriteWins, Key: key, Value: value, Timestamp: timestamp}
}

func SetAdd(key, member string) Command {
	return Command{Kind: KindSetAdd, Key: key, Field: member}
}

func SetRemove(key, member string) Command {
	return Command{Kind: KindSetRemove, Key: key, Field: member}
}

func SortedSetAdd(key, member string, delta int64) Command {
	return Command{Kind: KindSortedSetAdd, Key: key, Field: member, Delta: delta}
}

func HashSetValue(key, field string, value []byte) Command {
	return Command{Kind: KindHashSetValue, Key: key, Field: field, Value: value}
}

func HashSetMulti(key string, fields []string, values [][]byte) Command {
	return Command{Kind: KindHashSetMulti, Key: key, Fields: fields, Values: values}
}

func HashCounter(key, field string, delta int64) Command {
	return Command{Kind: KindHashCounter, Key: key, Field: field, Delta: delta}
}

func PNCounter(key string, delta int64) Command {
	return Command{Kind: KindPNCounter, Key: key, Delta: delta}
}

func UnsetKey(key string) Command {
	return Command{Kind: KindUnsetKey, Key: key}
}
