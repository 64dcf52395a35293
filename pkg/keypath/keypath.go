// Package keypath implements the crypto-keypath registry item: an ordered
// BIP-32 derivation path with an optional source fingerprint and depth.
package keypath

import (
	"strconv"
	"strings"

	"github.com/hblocks/urregistry/pkg/registry"
	"github.com/lightningnetwork/lnd/fn/v2"
	"github.com/pkg/errors"
)

const (
	keyComponents        uint64 = 1
	keySourceFingerprint uint64 = 2
	keyDepth             uint64 = 3
)

const item = "crypto-keypath"

// HardenedBit marks a hardened child index.
const HardenedBit uint32 = 0x80000000

// ErrHardenedIndex is returned for a component index that already carries
// the hardened bit.
var ErrHardenedIndex = errors.New("index must be less than 2^31")

// PathComponent is one step of a derivation path. A component without an
// index is a wildcard.
type PathComponent struct {
	index    fn.Option[uint32]
	hardened bool
}

// NewPathComponent returns a component for index. Pass fn.None for a
// wildcard.
func NewPathComponent(index fn.Option[uint32], hardened bool) (PathComponent,
	error) {

	if index.IsSome() && index.UnsafeFromSome()&HardenedBit != 0 {
		return PathComponent{}, errors.Wrapf(
			ErrHardenedIndex, "index %d", index.UnsafeFromSome(),
		)
	}

	return PathComponent{index: index, hardened: hardened}, nil
}

// Index returns the raw index without the hardened bit.
func (p PathComponent) Index() fn.Option[uint32] {
	return p.index
}

func (p PathComponent) IsWildcard() bool {
	return p.index.IsNone()
}

func (p PathComponent) IsHardened() bool {
	return p.hardened
}

// CanonicalIndex returns the index as used in BIP-32 derivation, with the
// hardened bit applied. Wildcards have no canonical index.
func (p PathComponent) CanonicalIndex() fn.Option[uint32] {
	return fn.MapOption(func(i uint32) uint32 {
		if p.hardened {
			return i | HardenedBit
		}
		return i
	})(p.index)
}

func (p PathComponent) String() string {
	s := "*"
	p.index.WhenSome(func(i uint32) {
		s = strconv.FormatUint(uint64(i), 10)
	})
	if p.hardened {
		s += "'"
	}

	return s
}

// KeyPath is a crypto-keypath item.
type KeyPath struct {
	components        []PathComponent
	sourceFingerprint fn.Option[[4]byte]
	depth             fn.Option[uint8]
}

// New returns a KeyPath over a copy of components.
func New(components []PathComponent, sourceFingerprint fn.Option[[4]byte],
	depth fn.Option[uint8]) KeyPath {

	return KeyPath{
		components:        append([]PathComponent(nil), components...),
		sourceFingerprint: sourceFingerprint,
		depth:             depth,
	}
}

// Components returns a copy of the path components.
func (k KeyPath) Components() []PathComponent {
	return append([]PathComponent(nil), k.components...)
}

// Len returns the number of components.
func (k KeyPath) Len() int {
	return len(k.components)
}

// Last returns the final component, if any.
func (k KeyPath) Last() fn.Option[PathComponent] {
	if len(k.components) == 0 {
		return fn.None[PathComponent]()
	}

	return fn.Some(k.components[len(k.components)-1])
}

func (k KeyPath) SourceFingerprint() fn.Option[[4]byte] {
	return k.sourceFingerprint
}

func (k KeyPath) Depth() fn.Option[uint8] {
	return k.depth
}

// Path renders the components as 44'/1'/1'/0/1. An empty path renders as
// the empty string.
func (k KeyPath) Path() string {
	parts := make([]string, len(k.components))
	for i, c := range k.components {
		parts[i] = c.String()
	}

	return strings.Join(parts, "/")
}

func (k KeyPath) String() string {
	return k.Path()
}

// Equal reports whether both paths carry the same components, fingerprint
// and depth.
func (k KeyPath) Equal(o KeyPath) bool {
	if len(k.components) != len(o.components) {
		return false
	}
	for i := range k.components {
		if k.components[i] != o.components[i] {
			return false
		}
	}

	return k.sourceFingerprint == o.sourceFingerprint && k.depth == o.depth
}

// ParsePath parses a path such as m/44'/0'/0'/0/* into components. Both ' and
// h/H mark a hardened step.
func ParsePath(path string) ([]PathComponent, error) {
	path = strings.TrimSpace(path)
	path = strings.TrimPrefix(path, "m")
	path = strings.TrimPrefix(path, "/")
	if path == "" {
		return nil, nil
	}

	parts := strings.Split(path, "/")
	components := make([]PathComponent, 0, len(parts))
	for _, part := range parts {
		hardened := false
		if n := len(part); n > 0 && strings.ContainsAny(part[n-1:], "'hH") {
			hardened = true
			part = part[:n-1]
		}

		index := fn.None[uint32]()
		if part != "*" {
			i, err := strconv.ParseUint(part, 10, 32)
			if err != nil {
				return nil, errors.Wrapf(err, "path component %q", part)
			}
			index = fn.Some(uint32(i))
		}

		c, err := NewPathComponent(index, hardened)
		if err != nil {
			return nil, err
		}
		components = append(components, c)
	}

	return components, nil
}

func (k KeyPath) RegistryType() registry.RegistryType {
	return registry.CryptoKeyPath
}

func (k KeyPath) ToCBOR() registry.Map {
	flat := make([]interface{}, 0, 2*len(k.components))
	for _, c := range k.components {
		var index interface{} = []interface{}{}
		c.index.WhenSome(func(i uint32) {
			index = uint64(i)
		})
		flat = append(flat, index, c.hardened)
	}

	m := registry.Map{keyComponents: flat}
	k.sourceFingerprint.WhenSome(func(fp [4]byte) {
		m[keySourceFingerprint] = uint64(fp[0])<<24 | uint64(fp[1])<<16 |
			uint64(fp[2])<<8 | uint64(fp[3])
	})
	k.depth.WhenSome(func(d uint8) {
		m[keyDepth] = uint64(d)
	})

	return m
}

// FromCBOR decodes a crypto-keypath from its associative value.
func FromCBOR(v interface{}) (KeyPath, error) {
	m, err := registry.AsMap(item, v)
	if err != nil {
		return KeyPath{}, err
	}

	flat, err := registry.RequiredField[[]interface{}](
		m, item, "components", keyComponents,
	)
	if err != nil {
		return KeyPath{}, err
	}
	components, err := decodeComponents(flat)
	if err != nil {
		return KeyPath{}, err
	}

	path := KeyPath{components: components}

	fp, ok, err := registry.Uint32Field(
		m, item, "source_fingerprint", keySourceFingerprint,
	)
	if err != nil {
		return KeyPath{}, err
	}
	if ok {
		path.sourceFingerprint = fn.Some([4]byte{
			byte(fp >> 24), byte(fp >> 16), byte(fp >> 8), byte(fp),
		})
	}

	depth, ok, err := registry.Field[uint64](m, item, "depth", keyDepth)
	if err != nil {
		return KeyPath{}, err
	}
	if ok {
		if depth > 0xff {
			return KeyPath{}, registry.InvalidError(
				item, "depth", errors.Errorf("%d overflows uint8",
					depth),
			)
		}
		path.depth = fn.Some(uint8(depth))
	}

	return path, nil
}

func decodeComponents(flat []interface{}) ([]PathComponent, error) {
	if len(flat)%2 != 0 {
		return nil, registry.InvalidError(
			item, "components", errors.Errorf("odd length %d",
				len(flat)),
		)
	}

	components := make([]PathComponent, 0, len(flat)/2)
	for i := 0; i < len(flat); i += 2 {
		index := fn.None[uint32]()
		switch v := flat[i].(type) {
		case uint64:
			if v > 0xffffffff {
				return nil, registry.InvalidError(
					item, "components",
					errors.Errorf("index %d overflows uint32", v),
				)
			}
			index = fn.Some(uint32(v))

		case []interface{}:
			if len(v) != 0 {
				return nil, registry.InvalidError(
					item, "components",
					errors.New("wildcard must be an empty array"),
				)
			}

		default:
			return nil, &registry.FieldError{
				Item:  item,
				Field: "components",
				Kind:  registry.ErrFieldType,
				Err: errors.Errorf("index %d: expected integer "+
					"or array, got %T", i/2, v),
			}
		}

		hardened, ok := flat[i+1].(bool)
		if !ok {
			return nil, &registry.FieldError{
				Item:  item,
				Field: "components",
				Kind:  registry.ErrFieldType,
				Err: errors.Errorf("hardened flag %d: expected "+
					"bool, got %T", i/2, flat[i+1]),
			}
		}

		c, err := NewPathComponent(index, hardened)
		if err != nil {
			return nil, registry.InvalidError(item, "components", err)
		}
		components = append(components, c)
	}

	return components, nil
}

// Decode parses the canonical encoding of a crypto-keypath.
func Decode(data []byte) (KeyPath, error) {
	m, err := registry.DecodeMap(item, data)
	if err != nil {
		return KeyPath{}, err
	}

	return FromCBOR(m)
}
