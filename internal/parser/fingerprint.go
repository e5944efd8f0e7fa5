package parser

import (
	"slices"
	"strconv"

	"github.com/cespare/xxhash/v2"
)

// LocalFingerprint hashes the content a diff unit owns: its own scalar
// attributes and reference paths plus the full subtree of descendants that are
// not diff units themselves. Two matched units with equal local fingerprints
// carry no change of their own.
func LocalFingerprint(n *Node) uint64 {
	d := xxhash.New()
	writeLocal(d, n, true)
	return d.Sum64()
}

// LocalFingerprintIgnoringName is LocalFingerprint without the node's own
// name. Two units that differ only by name share it.
func LocalFingerprintIgnoringName(n *Node) uint64 {
	d := xxhash.New()
	writeLocal(d, n, false)
	return d.Sum64()
}

// Fingerprint hashes the whole subtree rooted at n
func Fingerprint(n *Node) uint64 {
	d := xxhash.New()
	writeSubtree(d, n)
	return d.Sum64()
}

func writeLocal(d *xxhash.Digest, n *Node, withName bool) {
	if n == nil {
		return
	}
	owned := 0
	for _, child := range n.Children {
		if !child.IsDiffUnit() {
			owned++
		}
	}
	name := ""
	if withName {
		name = n.Name
	}
	writeScalars(d, n, name, owned)
	for _, child := range n.Children {
		if child.IsDiffUnit() {
			continue
		}
		_, _ = d.WriteString("|(")
		writeSubtree(d, child)
		_, _ = d.WriteString(")")
	}
}

func writeSubtree(d *xxhash.Digest, n *Node) {
	if n == nil {
		return
	}
	writeScalars(d, n, n.Name, len(n.Children))
	for _, child := range n.Children {
		_, _ = d.WriteString("|(")
		writeSubtree(d, child)
		_, _ = d.WriteString(")")
	}
}

func writeScalars(d *xxhash.Digest, n *Node, name string, childCount int) {
	_, _ = d.WriteString(string(n.Type))
	_, _ = d.WriteString("|r=" + n.Role)
	_, _ = d.WriteString("|n=" + name)
	_, _ = d.WriteString("|v=" + n.Value)
	_, _ = d.WriteString("|o=" + n.Op)

	mods := slices.Clone(n.Modifiers)
	slices.Sort(mods)
	for _, m := range mods {
		_, _ = d.WriteString("|m=" + m)
	}

	keys := make([]string, 0, len(n.Attrs))
	for k := range n.Attrs {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, k := range keys {
		_, _ = d.WriteString("|a=" + k + "=" + n.Attrs[k])
	}

	refKeys := make([]string, 0, len(n.Refs))
	for k := range n.Refs {
		refKeys = append(refKeys, k)
	}
	slices.Sort(refKeys)
	for _, k := range refKeys {
		_, _ = d.WriteString("|ref=" + k + "=" + n.Refs[k].Path())
	}
	_, _ = d.WriteString("|c=" + strconv.Itoa(childCount))
}
