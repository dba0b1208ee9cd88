package reason

import (
	"context"
	"log/slog"

	"github.com/robertmuil/pythinfer/internal/store"
	"github.com/robertmuil/pythinfer/pkg/rdf"
	"github.com/robertmuil/pythinfer/pkg/rdf/vocab"
)

// rlReasoner is the in-process OWL-RL rule engine. It implements the rule
// subset that matters for project data: subclass and subproperty closure and
// inheritance, domain and range, symmetric, transitive, inverse, functional
// and inverse-functional properties, class and property equivalence, and
// sameAs propagation. Like the reference OWL-RL engines it also asserts the
// universal owl:Thing typing and reflexive owl:sameAs for every individual;
// the filter chain strips those banalities from the wanted output, and the
// reference-only pass keeps vocabulary noise out of the combined graphs.
type rlReasoner struct {
	logger *slog.Logger
}

func (r *rlReasoner) Name() string { return BackendRLInProcess }

// Reason runs the rule engine to its own fixed point over the view's triples
// and deposits the delta into the target graph.
func (r *rlReasoner) Reason(ctx context.Context, v *store.View, target rdf.Term) (int, error) {
	input, err := v.Triples(rdf.Pattern{})
	if err != nil {
		return 0, err
	}
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	closure := computeClosure(input)
	r.logger.Debug("owl-rl closure computed",
		"input", len(input), "closure", len(closure))

	added, err := depositDelta(v, target, closure)
	if err != nil {
		return added, err
	}
	r.logger.Info("owl-rl inference complete",
		"input", len(input), "new", added, "target", target.String())
	return added, nil
}

// schema holds the per-iteration rule indexes extracted from the working set.
type schema struct {
	subClass    map[rdf.Term][]rdf.Term // c1 -> superclasses
	subProp     map[rdf.Term][]rdf.Term // p1 -> superproperties
	domain      map[rdf.Term][]rdf.Term
	rng         map[rdf.Term][]rdf.Term
	inverse     map[rdf.Term][]rdf.Term // p1 -> inverses (both directions)
	symmetric   map[rdf.Term]struct{}
	transitive  map[rdf.Term]struct{}
	functional  map[rdf.Term]struct{}
	invFunction map[rdf.Term]struct{}
	sameAs      map[rdf.Term][]rdf.Term
}

func buildSchema(ts map[rdf.Triple]struct{}) *schema {
	s := &schema{
		subClass:    map[rdf.Term][]rdf.Term{},
		subProp:     map[rdf.Term][]rdf.Term{},
		domain:      map[rdf.Term][]rdf.Term{},
		rng:         map[rdf.Term][]rdf.Term{},
		inverse:     map[rdf.Term][]rdf.Term{},
		symmetric:   map[rdf.Term]struct{}{},
		transitive:  map[rdf.Term]struct{}{},
		functional:  map[rdf.Term]struct{}{},
		invFunction: map[rdf.Term]struct{}{},
		sameAs:      map[rdf.Term][]rdf.Term{},
	}
	for t := range ts {
		switch t.Predicate {
		case vocab.RDFSSubClassOf:
			s.subClass[t.Subject] = append(s.subClass[t.Subject], t.Object)
		case vocab.RDFSSubPropertyOf:
			s.subProp[t.Subject] = append(s.subProp[t.Subject], t.Object)
		case vocab.OWLEquivalentClass:
			// scm-eqc: equivalence is mutual subsumption.
			s.subClass[t.Subject] = append(s.subClass[t.Subject], t.Object)
			s.subClass[t.Object] = append(s.subClass[t.Object], t.Subject)
		case vocab.OWLEquivalentProperty:
			s.subProp[t.Subject] = append(s.subProp[t.Subject], t.Object)
			s.subProp[t.Object] = append(s.subProp[t.Object], t.Subject)
		case vocab.RDFSDomain:
			s.domain[t.Subject] = append(s.domain[t.Subject], t.Object)
		case vocab.RDFSRange:
			s.rng[t.Subject] = append(s.rng[t.Subject], t.Object)
		case vocab.OWLInverseOf:
			s.inverse[t.Subject] = append(s.inverse[t.Subject], t.Object)
			s.inverse[t.Object] = append(s.inverse[t.Object], t.Subject)
		case vocab.OWLSameAs:
			s.sameAs[t.Subject] = append(s.sameAs[t.Subject], t.Object)
		case vocab.RDFType:
			switch t.Object {
			case vocab.OWLSymmetricProperty:
				s.symmetric[t.Subject] = struct{}{}
			case vocab.OWLTransitiveProperty:
				s.transitive[t.Subject] = struct{}{}
			case vocab.OWLFunctionalProperty:
				s.functional[t.Subject] = struct{}{}
			case vocab.OWLInverseFunctionalProperty:
				s.invFunction[t.Subject] = struct{}{}
			}
		}
	}
	return s
}

// computeClosure iterates the rule set to a fixed point and returns the full
// closure, input included.
func computeClosure(input []rdf.Triple) []rdf.Triple {
	working := make(map[rdf.Triple]struct{}, len(input)*2)
	for _, t := range input {
		working[t] = struct{}{}
	}

	for {
		fresh := applyRules(working)
		grew := false
		for _, t := range fresh {
			if _, dup := working[t]; !dup {
				working[t] = struct{}{}
				grew = true
			}
		}
		if !grew {
			break
		}
	}

	out := make([]rdf.Triple, 0, len(working))
	for t := range working {
		out = append(out, t)
	}
	return out
}

func applyRules(working map[rdf.Triple]struct{}) []rdf.Triple {
	s := buildSchema(working)

	// Object index per predicate for the join rules (prp-trp, prp-fp,
	// prp-ifp).
	bySubj := map[rdf.Term]map[rdf.Term][]rdf.Term{} // pred -> subj -> objs
	byObj := map[rdf.Term]map[rdf.Term][]rdf.Term{}  // pred -> obj -> subjs
	for t := range working {
		sm, ok := bySubj[t.Predicate]
		if !ok {
			sm = map[rdf.Term][]rdf.Term{}
			bySubj[t.Predicate] = sm
		}
		sm[t.Subject] = append(sm[t.Subject], t.Object)
		om, ok := byObj[t.Predicate]
		if !ok {
			om = map[rdf.Term][]rdf.Term{}
			byObj[t.Predicate] = om
		}
		om[t.Object] = append(om[t.Object], t.Subject)
	}

	var fresh []rdf.Triple
	emit := func(sub, pred, obj rdf.Term) {
		fresh = append(fresh, rdf.Triple{Subject: sub, Predicate: pred, Object: obj})
	}

	for t := range working {
		sub, pred, obj := t.Subject, t.Predicate, t.Object

		// eq-ref and the universal Thing typing, matching what the OWL-RL
		// reference engines emit. The reflexive sameAs is emitted for every
		// non-literal subject, schema terms included; the Thing typing for
		// every rdf:type subject.
		if sub.Kind() != rdf.KindLiteral {
			emit(sub, vocab.OWLSameAs, sub)
			if pred == vocab.RDFType {
				emit(sub, vocab.RDFType, vocab.OWLThing)
			}
		}

		// cax-sco and scm-sco.
		if pred == vocab.RDFType {
			for _, super := range s.subClass[obj] {
				emit(sub, vocab.RDFType, super)
			}
		}
		if pred == vocab.RDFSSubClassOf {
			for _, super := range s.subClass[obj] {
				emit(sub, vocab.RDFSSubClassOf, super)
			}
		}
		// scm-spo.
		if pred == vocab.RDFSSubPropertyOf {
			for _, super := range s.subProp[obj] {
				emit(sub, vocab.RDFSSubPropertyOf, super)
			}
		}
		// cax-eqc both directions are folded into subClass by buildSchema.

		// prp-spo1.
		for _, super := range s.subProp[pred] {
			emit(sub, super, obj)
		}
		// prp-dom / prp-rng.
		for _, c := range s.domain[pred] {
			emit(sub, vocab.RDFType, c)
		}
		for _, c := range s.rng[pred] {
			if obj.Kind() != rdf.KindLiteral {
				emit(obj, vocab.RDFType, c)
			}
		}
		// prp-symp.
		if _, ok := s.symmetric[pred]; ok && obj.Kind() != rdf.KindLiteral {
			emit(obj, pred, sub)
		}
		// prp-trp.
		if _, ok := s.transitive[pred]; ok {
			for _, far := range bySubj[pred][obj] {
				emit(sub, pred, far)
			}
		}
		// prp-inv1 / prp-inv2.
		for _, inv := range s.inverse[pred] {
			if obj.Kind() != rdf.KindLiteral {
				emit(obj, inv, sub)
			}
		}
		// prp-fp: two objects for one subject are the same individual.
		if _, ok := s.functional[pred]; ok {
			for _, other := range bySubj[pred][sub] {
				if other != obj {
					emit(obj, vocab.OWLSameAs, other)
				}
			}
		}
		// prp-ifp.
		if _, ok := s.invFunction[pred]; ok {
			for _, other := range byObj[pred][obj] {
				if other != sub {
					emit(sub, vocab.OWLSameAs, other)
				}
			}
		}
		// eq-sym, eq-trans, eq-rep-s, eq-rep-o.
		if pred == vocab.OWLSameAs {
			if obj.Kind() != rdf.KindLiteral {
				emit(obj, vocab.OWLSameAs, sub)
			}
			for _, further := range s.sameAs[obj] {
				emit(sub, vocab.OWLSameAs, further)
			}
		}
		for _, same := range s.sameAs[sub] {
			emit(same, pred, obj)
		}
		if obj.Kind() != rdf.KindLiteral {
			for _, same := range s.sameAs[obj] {
				emit(sub, pred, same)
			}
		}
	}
	return fresh
}
