package tri

import (
	"github.com/2x3systems/gonsurf/gonsurf"
	"github.com/2x3systems/gonsurf/libnsurf/perm"
	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
	"github.com/pkg/errors"
)

// GluingList is the parsed form of "<size>: <tet>.<face> <adj> (<perm>), ...".
type GluingList struct {
	Size    int       `@Int ":"`
	Gluings []*Gluing `(@@ ("," @@)*)?`
}

// Gluing glues face Face of Tet to tetrahedron Adj using Perm.
type Gluing struct {
	Tet  int    `@Int "."`
	Face int    `@Int`
	Adj  int    `@Int`
	Perm string `"(" @Int ")"`
}

var sGluingLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Int", Pattern: `[0-9]+`},
	{Name: "Punct", Pattern: `[:.,()]`},
	{Name: "whitespace", Pattern: `[ \t\r\n]+`},
})

var sParseGluingList = participle.MustBuild[GluingList](
	participle.Lexer(sGluingLexer),
)

// Parse builds a triangulation from the gluing list form written by Triangulation.String.
//
// A face pair may be listed from both sides as long as the two entries agree.
func Parse(expr string) (*Triangulation, error) {
	list, err := sParseGluingList.ParseString("", expr)
	if err != nil {
		return nil, errors.Wrap(gonsurf.ErrBadGluing, err.Error())
	}
	if list.Size < 0 {
		return nil, errors.Wrapf(gonsurf.ErrBadGluing, "size %d", list.Size)
	}

	T := New(list.Size)
	for _, gl := range list.Gluings {
		g, err := perm.Parse(gl.Perm)
		if err != nil {
			return nil, err
		}
		if err := T.checkFace(gl.Tet, gl.Face); err != nil {
			return nil, err
		}
		if u, existing, ok := T.Adjacent(gl.Tet, gl.Face); ok {
			if u == gl.Adj && existing == g {
				continue
			}
		}
		if err := T.Join(gl.Tet, gl.Face, gl.Adj, g); err != nil {
			return nil, err
		}
	}
	return T, nil
}

// MustParse is Parse for fixed, known-good expressions.  It panics on error.
func MustParse(expr string) *Triangulation {
	T, err := Parse(expr)
	if err != nil {
		panic(err)
	}
	return T
}
