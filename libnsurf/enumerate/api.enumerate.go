// Package enumerate finds the vertex normal (or almost normal) surfaces of a triangulation,
// either by a tree traversal pruned with exact linear programming or by the double
// description method.
package enumerate

import (
	"github.com/2x3systems/gonsurf/gonsurf"
	"github.com/2x3systems/gonsurf/libnsurf/maths"
	"github.com/2x3systems/gonsurf/libnsurf/normal"
	"github.com/2x3systems/gonsurf/libnsurf/tri"
	"github.com/pkg/errors"
	"github.com/plan-systems/klog"
)

const (
	componentOptions = "enumerate.options"
	componentTree    = "enumerate.tree"
	componentDD      = "enumerate.dd"
	componentExtra   = "enumerate.constraints"
	componentBans    = "enumerate.bans"
)

// run is a validated enumeration request.
type run struct {
	T     *tri.Triangulation
	opts  *gonsurf.EnumOpts
	enc   normal.Encoding
	algo  gonsurf.Algorithm
	extra extraConstraint
	bans  *BanConstraint

	cannotSupply bool
}

// Enumerate passes every vertex solution described by opts to sink.
//
// With WhichOneOf, at most one solution is emitted (see FindOne).  An empty result is not
// an error.  If opts.Cancel is observed the run stops with ErrCancelled; solutions emitted
// before that are a prefix of an uncancelled run.
func Enumerate(T *tri.Triangulation, opts gonsurf.EnumOpts, sink gonsurf.Sink) error {
	if opts.Which == gonsurf.WhichOneOf {
		S, err := FindOne(T, opts)
		if err == nil && S != nil {
			sink.Emit(S)
		}
		return err
	}

	r, err := newRun(T, &opts)
	if err != nil {
		return err
	}
	if r.cannotSupply {
		return nil
	}

	if opts.IsCancelled() {
		return gonsurf.Raise(componentOptions, gonsurf.ErrCancelled)
	}

	if r.algo == gonsurf.AlgorithmDoubleDescription {
		return r.runDD(sink)
	}
	return r.runTree(sink)
}

// FindOne returns a single non-trivial solution accepted by opts.Accept (if set), or nil
// if there is none.
//
// The solution need not be a vertex, and is never a pure multiple of vertex links: some
// triangle coordinate not marked by the ban policy is zero.  Triangle coordinates are
// therefore required.
func FindOne(T *tri.Triangulation, opts gonsurf.EnumOpts) (gonsurf.Solution, error) {
	r, err := newRun(T, &opts)
	if err != nil {
		return nil, err
	}
	if !r.enc.Triangles {
		return nil, gonsurf.Raise(componentOptions, errors.Wrap(gonsurf.ErrUnsupportedCombination, "find-one needs triangle coordinates"))
	}
	if r.algo == gonsurf.AlgorithmDoubleDescription {
		return nil, gonsurf.Raise(componentOptions, errors.Wrap(gonsurf.ErrUnsupportedCombination, "find-one runs only as a tree search"))
	}
	if r.cannotSupply {
		return nil, nil
	}
	if opts.IsCancelled() {
		return nil, gonsurf.Raise(componentOptions, gonsurf.ErrCancelled)
	}

	tab := NewInitialTableau(T, r.enc, r.extra, false)
	r.bans.attach(tab)
	native, err := r.chooseArithmetic(tab)
	if err != nil {
		return nil, err
	}

	st := newRunStats("tree-single", r.enc.Coords().String())
	var S gonsurf.Solution
	err = catchOverflow(func() error {
		var err error
		if native {
			S, err = findOne[maths.Native](r, tab, st)
		} else {
			S, err = findOne[maths.Integer](r, tab, st)
		}
		return err
	})
	if err == nil && S != nil {
		st.emitted = 1
	}
	st.publish(err)
	if err != nil {
		return nil, gonsurf.Raise(componentTree, err)
	}
	if S != nil {
		klog.V(2).Infof("find-one: found %v after %d nodes", S, st.visited)
	} else {
		klog.V(2).Infof("find-one: no solution after %d nodes", st.visited)
	}
	return S, nil
}

func newRun(T *tri.Triangulation, opts *gonsurf.EnumOpts) (*run, error) {
	if T == nil {
		return nil, gonsurf.Raise(componentOptions, errors.Wrap(gonsurf.ErrInvalidArgument, "nil triangulation"))
	}
	enc, err := normal.EncodingFor(opts.Coords)
	if err != nil {
		return nil, gonsurf.Raise(componentOptions, err)
	}

	r := &run{
		T:    T,
		opts: opts,
		enc:  enc,
		algo: opts.Algorithm,
	}

	switch opts.Which {
	case gonsurf.WhichVertex, gonsurf.WhichOneOf:
	case gonsurf.WhichFundamental:
		return nil, gonsurf.Raise(componentOptions, errors.Wrap(gonsurf.ErrUnsupportedCombination, "fundamental surfaces"))
	default:
		return nil, gonsurf.Raise(componentOptions, errors.Wrapf(gonsurf.ErrInvalidArgument, "which %v", opts.Which))
	}

	switch opts.Algorithm {
	case gonsurf.AlgorithmDefault:
		r.algo = gonsurf.AlgorithmTree
	case gonsurf.AlgorithmTree, gonsurf.AlgorithmDoubleDescription:
	default:
		return nil, gonsurf.Raise(componentOptions, errors.Wrapf(gonsurf.ErrInvalidArgument, "algorithm %v", opts.Algorithm))
	}

	cons := opts.Constraints
	switch {
	case cons.Has(gonsurf.ConstraintEulerPositive) && cons.Has(gonsurf.ConstraintEulerZero),
		cons.Has(gonsurf.ConstraintNonSpun) && cons != gonsurf.ConstraintNonSpun:
		return nil, gonsurf.Raise(componentOptions, errors.Wrapf(gonsurf.ErrUnsupportedCombination, "constraints %v together", cons))
	case cons.Has(gonsurf.ConstraintNonSpun) && enc.Octagons:
		return nil, gonsurf.Raise(componentOptions, errors.Wrap(gonsurf.ErrUnsupportedCombination, "non-spun with octagons"))
	case cons.Has(gonsurf.ConstraintEulerPositive) && r.algo == gonsurf.AlgorithmDoubleDescription:
		return nil, gonsurf.Raise(componentOptions, errors.Wrap(gonsurf.ErrUnsupportedCombination, "euler-positive is an inequality; use the tree"))
	}
	if opts.CoefficientBits < 0 {
		return nil, gonsurf.Raise(componentOptions, errors.Wrapf(gonsurf.ErrInvalidArgument, "coefficient bits %d", opts.CoefficientBits))
	}

	r.bans, err = newBanConstraint(T, enc, opts.Ban)
	if err != nil {
		return nil, gonsurf.Raise(componentBans, err)
	}

	r.extra, err = newExtraConstraint(T, enc, cons, opts.Slopes)
	if errors.Is(err, gonsurf.ErrCannotSupply) {
		klog.V(2).Infof("enumerate: %v; no solutions", err)
		r.cannotSupply = true
		err = nil
	}
	if err != nil {
		return nil, gonsurf.Raise(componentExtra, err)
	}

	klog.V(2).Infof("enumerate: %d tetrahedra, coords %v, %v, algorithm %v, constraints %v, ban %v",
		T.Size(), enc.Coords(), opts.Which, r.algo, cons, opts.Ban.Kind)
	return r, nil
}

// chooseArithmetic decides between checked machine integers and arbitrary precision.
func (r *run) chooseArithmetic(tab *InitialTableau) (native bool, err error) {
	bound := CoefficientBound(tab)
	bits := bound.BitLen()
	if r.opts.CoefficientBits > 0 && bits > r.opts.CoefficientBits {
		err = errors.Wrapf(gonsurf.ErrNumericOverflow, "coefficient bound needs %d bits, cap is %d", bits, r.opts.CoefficientBits)
		return false, gonsurf.Raise(componentTree, err)
	}
	native = FitsNative(bound)
	klog.V(2).Infof("enumerate: coefficient bound %d bits, native=%v", bits, native)
	return native, nil
}

// catchOverflow runs fn, turning an arithmetic overflow panic into ErrNumericOverflow.
func catchOverflow(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			oe, ok := r.(*maths.OverflowError)
			if !ok {
				panic(r)
			}
			err = errors.Wrap(oe, "tableau")
		}
	}()
	return fn()
}

func (r *run) runTree(sink gonsurf.Sink) error {
	tab := NewInitialTableau(r.T, r.enc, r.extra, true)
	r.bans.attach(tab)
	native, err := r.chooseArithmetic(tab)
	if err != nil {
		return err
	}

	st := newRunStats("tree", r.enc.Coords().String())
	err = catchOverflow(func() error {
		if native {
			return enumerateTree[maths.Native](r, tab, sink, st)
		}
		return enumerateTree[maths.Integer](r, tab, sink, st)
	})
	st.publish(err)
	klog.V(2).Infof("enumerate: tree emitted %d solutions, visited %d nodes", st.emitted, st.visited)
	return gonsurf.Raise(componentTree, err)
}

func enumerateTree[T maths.Element[T]](r *run, tab *InitialTableau, sink gonsurf.Sink, st *runStats) error {
	E := NewTreeEnumeration[T](tab, r.bans, r.opts.Cancel)
	defer func() {
		st.visited = E.VisitedCount()
	}()

	for E.Next() {
		if r.opts.IsCancelled() {
			break
		}
		S := E.BuildSurface()
		if klog.V(3) {
			klog.Infof("enumerate: solution %d %v", st.emitted, S)
		}
		sink.Emit(S)
		st.emitted++
		if r.opts.IsCancelled() {
			break
		}
	}
	if r.opts.IsCancelled() {
		return gonsurf.ErrCancelled
	}
	return nil
}

func findOne[T maths.Element[T]](r *run, tab *InitialTableau, st *runStats) (gonsurf.Solution, error) {
	F := NewTreeSingleSoln[T](tab, r.bans, r.opts.Cancel)
	defer func() {
		st.visited = F.VisitedCount()
	}()

	for F.Find() {
		S := F.BuildSurface()
		if S.IsZero() {
			continue
		}
		if r.opts.Accept == nil || r.opts.Accept(S) {
			return S, nil
		}
		klog.V(3).Infof("find-one: rejected %v", S)
	}
	if r.opts.IsCancelled() {
		return nil, gonsurf.ErrCancelled
	}
	return nil, nil
}

func (r *run) runDD(sink gonsurf.Sink) error {
	st := newRunStats("dd", r.enc.Coords().String())
	dd := NewDoubleDescription(r.T, r.enc, r.extra, r.bans, r.opts.Cancel)

	var err error
	ok := dd.Run(func(S *normal.Surface) {
		if r.opts.IsCancelled() {
			return
		}
		if klog.V(3) {
			klog.Infof("enumerate: solution %d %v", st.emitted, S)
		}
		sink.Emit(S)
		st.emitted++
	})
	st.visited = dd.nPairsSeen
	if !ok || r.opts.IsCancelled() {
		err = gonsurf.ErrCancelled
	}
	st.publish(err)
	klog.V(2).Infof("enumerate: dd emitted %d solutions, largest intermediate set %d rays", st.emitted, dd.nRaysMax)
	return gonsurf.Raise(componentDD, err)
}

// errorLabel returns a short metric label for err.
func errorLabel(err error) string {
	switch {
	case errors.Is(err, gonsurf.ErrCancelled):
		return "cancelled"
	case errors.Is(err, gonsurf.ErrNumericOverflow):
		return "overflow"
	case errors.Is(err, gonsurf.ErrUnsupportedCombination):
		return "unsupported"
	case errors.Is(err, gonsurf.ErrInvalidArgument):
		return "invalid"
	}
	return "error"
}
