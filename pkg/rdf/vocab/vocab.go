// Package vocab holds IRI constants for the well-known vocabularies pythinfer
// reasons over and filters against.
package vocab

import "github.com/robertmuil/pythinfer/pkg/rdf"

// Namespace prefixes, used by parsers and serializers for prefix binding.
const (
	RDFNS  = "http://www.w3.org/1999/02/22-rdf-syntax-ns#"
	RDFSNS = "http://www.w3.org/2000/01/rdf-schema#"
	OWLNS  = "http://www.w3.org/2002/07/owl#"
	XSDNS  = "http://www.w3.org/2001/XMLSchema#"
	FOAFNS = "http://xmlns.com/foaf/0.1/"
	SKOSNS = "http://www.w3.org/2004/02/skos/core#"
	DCTNS  = "http://purl.org/dc/terms/"
)

// RDF vocabulary.
const (
	RDFType      rdf.IRI = RDFNS + "type"
	RDFProperty  rdf.IRI = RDFNS + "Property"
	RDFFirst     rdf.IRI = RDFNS + "first"
	RDFRest      rdf.IRI = RDFNS + "rest"
	RDFNil       rdf.IRI = RDFNS + "nil"
	RDFStatement rdf.IRI = RDFNS + "Statement"
)

// RDFS vocabulary.
const (
	RDFSSubClassOf    rdf.IRI = RDFSNS + "subClassOf"
	RDFSSubPropertyOf rdf.IRI = RDFSNS + "subPropertyOf"
	RDFSDomain        rdf.IRI = RDFSNS + "domain"
	RDFSRange         rdf.IRI = RDFSNS + "range"
	RDFSClass         rdf.IRI = RDFSNS + "Class"
	RDFSResource      rdf.IRI = RDFSNS + "Resource"
	RDFSLabel         rdf.IRI = RDFSNS + "label"
	RDFSComment       rdf.IRI = RDFSNS + "comment"
)

// OWL vocabulary.
const (
	OWLThing                     rdf.IRI = OWLNS + "Thing"
	OWLNothing                   rdf.IRI = OWLNS + "Nothing"
	OWLClass                     rdf.IRI = OWLNS + "Class"
	OWLSameAs                    rdf.IRI = OWLNS + "sameAs"
	OWLDifferentFrom             rdf.IRI = OWLNS + "differentFrom"
	OWLEquivalentClass           rdf.IRI = OWLNS + "equivalentClass"
	OWLEquivalentProperty        rdf.IRI = OWLNS + "equivalentProperty"
	OWLInverseOf                 rdf.IRI = OWLNS + "inverseOf"
	OWLSymmetricProperty         rdf.IRI = OWLNS + "SymmetricProperty"
	OWLTransitiveProperty        rdf.IRI = OWLNS + "TransitiveProperty"
	OWLFunctionalProperty        rdf.IRI = OWLNS + "FunctionalProperty"
	OWLInverseFunctionalProperty rdf.IRI = OWLNS + "InverseFunctionalProperty"
	OWLObjectProperty            rdf.IRI = OWLNS + "ObjectProperty"
	OWLDatatypeProperty          rdf.IRI = OWLNS + "DatatypeProperty"
	OWLDisjointWith              rdf.IRI = OWLNS + "disjointWith"
	OWLPropertyDisjointWith      rdf.IRI = OWLNS + "propertyDisjointWith"
)

// Well-known FOAF terms, used only in tests and examples.
const (
	FOAFPerson rdf.IRI = FOAFNS + "Person"
	FOAFKnows  rdf.IRI = FOAFNS + "knows"
	FOAFAge    rdf.IRI = FOAFNS + "age"
)

// SKOS terms referenced by the reference-noise tests.
const (
	SKOSConcept   rdf.IRI = SKOSNS + "Concept"
	SKOSBroader   rdf.IRI = SKOSNS + "broader"
	SKOSNarrower  rdf.IRI = SKOSNS + "narrower"
	SKOSRelated   rdf.IRI = SKOSNS + "related"
	SKOSPrefLabel rdf.IRI = SKOSNS + "prefLabel"
)

// DCT terms referenced by project-supplied heuristics.
const (
	DCTIsVersionOf rdf.IRI = DCTNS + "isVersionOf"
)

// CommonPrefixes maps prefix names to namespaces for serializer output.
var CommonPrefixes = map[string]string{
	"rdf":  RDFNS,
	"rdfs": RDFSNS,
	"owl":  OWLNS,
	"xsd":  XSDNS,
	"foaf": FOAFNS,
	"skos": SKOSNS,
	"dct":  DCTNS,
}
