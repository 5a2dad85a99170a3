package huffman

import (
	"container/heap"
	"fmt"
	"strings"
)

// Node is a node of a code tree. A leaf carries a symbol; an internal node
// carries only the combined frequency of its subtree.
type Node struct {
	symbol Symbol
	freq   int
	leaf   bool
	left   *Node
	right  *Node
}

// IsLeaf reports whether n holds a symbol.
func (n *Node) IsLeaf() bool { return n.leaf }

// Symbol returns the leaf's symbol. It is meaningless for internal nodes.
func (n *Node) Symbol() Symbol { return n.symbol }

// Freq returns the frequency of the node's subtree. Trees read back with
// UnmarshalTree carry no frequencies and report 0.
func (n *Node) Freq() int { return n.freq }

// Left returns the child reached by a 0 bit, or nil.
func (n *Node) Left() *Node { return n.left }

// Right returns the child reached by a 1 bit, or nil.
func (n *Node) Right() *Node { return n.right }

// String renders the subtree in preorder. Internal nodes print as
// *(left,right), leaves as quoted bytes.
func (n *Node) String() string {
	var sb strings.Builder
	n.format(&sb)
	return sb.String()
}

func (n *Node) format(sb *strings.Builder) {
	if n == nil {
		sb.WriteString("-")
		return
	}
	if n.leaf {
		fmt.Fprintf(sb, "%q", string([]byte{n.symbol}))
		return
	}
	sb.WriteString("*(")
	n.left.format(sb)
	sb.WriteByte(',')
	n.right.format(sb)
	sb.WriteByte(')')
}

// queued pairs a node with the order in which it entered the queue.
type queued struct {
	node *Node
	seq  int
}

// nodeQueue is a min-heap on (frequency, insertion sequence).
type nodeQueue []queued

func (q nodeQueue) Len() int { return len(q) }

func (q nodeQueue) Less(i, j int) bool {
	if q[i].node.freq != q[j].node.freq {
		return q[i].node.freq < q[j].node.freq
	}
	return q[i].seq < q[j].seq
}

func (q nodeQueue) Swap(i, j int) { q[i], q[j] = q[j], q[i] }

func (q *nodeQueue) Push(x any) { *q = append(*q, x.(queued)) }

func (q *nodeQueue) Pop() any {
	old := *q
	n := len(old)
	item := old[n-1]
	old[n-1] = queued{}
	*q = old[:n-1]
	return item
}

// BuildTree builds the code tree for ft. It returns nil when ft is empty.
//
// Ties between equal frequencies are broken by insertion order: leaves are
// queued in first-appearance order and each merged node is queued behind
// everything already waiting. The first node dequeued becomes the left
// child, the second the right child.
func BuildTree(ft *FrequencyTable) *Node {
	if ft == nil || ft.Len() == 0 {
		return nil
	}

	q := make(nodeQueue, 0, ft.Len())
	seq := 0
	for _, s := range ft.symbols {
		q = append(q, queued{node: &Node{symbol: s, freq: ft.counts[s], leaf: true}, seq: seq})
		seq++
	}
	heap.Init(&q)

	if q.Len() == 1 {
		only := heap.Pop(&q).(queued).node
		return &Node{freq: only.freq, left: only}
	}

	for q.Len() > 1 {
		left := heap.Pop(&q).(queued).node
		right := heap.Pop(&q).(queued).node
		heap.Push(&q, queued{
			node: &Node{freq: left.freq + right.freq, left: left, right: right},
			seq:  seq,
		})
		seq++
	}

	return q[0].node
}
