package common

import (
	"container/list"
)

type mapElement[V any] struct {
	val     V
	element *list.Element
}

// LinkedMap 按插入顺序遍历的map,不是并发安全的,由调用方负责同步
type LinkedMap[K comparable, V any] struct {
	l *list.List
	m map[K]*mapElement[V]
}

// NewLinkedMap create linked map
func NewLinkedMap[K comparable, V any]() *LinkedMap[K, V] {
	return &LinkedMap[K, V]{
		l: list.New(),
		m: map[K]*mapElement[V]{},
	}
}

// Put put value with key, an existing key keeps its position
func (p *LinkedMap[K, V]) Put(key K, value V) {
	if pre, ok := p.m[key]; ok {
		pre.val = value
		return
	}
	keyElem := p.l.PushBack(key)
	p.m[key] = &mapElement[V]{
		val:     value,
		element: keyElem,
	}
}

// PutIfAbsent put value only when key is absent, returns whether it was put
func (p *LinkedMap[K, V]) PutIfAbsent(key K, value V) bool {
	if _, ok := p.m[key]; ok {
		return false
	}
	p.Put(key, value)
	return true
}

// Get value with key
func (p *LinkedMap[K, V]) Get(key K) (val V, ok bool) {
	if pre, ok := p.m[key]; ok {
		return pre.val, ok
	}
	return val, false
}

// Remove value with key
func (p *LinkedMap[K, V]) Remove(key K) (preVal V, ok bool) {
	if pre, ok := p.m[key]; ok {
		delete(p.m, key)
		p.l.Remove(pre.element)
		return pre.val, true
	}
	return preVal, false
}

// Len return the length of the map
func (p *LinkedMap[K, V]) Len() int {
	return p.l.Len()
}

// MapEntry define map entry with key and value
type MapEntry[K comparable, V any] struct {
	Key   K
	Value V
}

// Entries return entry slice in insertion order
func (p *LinkedMap[K, V]) Entries() []*MapEntry[K, V] {
	entries := make([]*MapEntry[K, V], 0, p.l.Len())
	for e := p.l.Front(); e != nil; e = e.Next() {
		key := e.Value.(K)
		entries = append(entries, &MapEntry[K, V]{Key: key, Value: p.m[key].val})
	}
	return entries
}

// Map copy to a plain map
func (p *LinkedMap[K, V]) Map() map[K]V {
	m := make(map[K]V, len(p.m))
	for k, v := range p.m {
		m[k] = v.val
	}
	return m
}
