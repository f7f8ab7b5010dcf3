// Package feed identifies the procurement feeds published by the Spanish
// Ministry of Finance and maps each to its landing page and local layout.
package feed

import (
	"fmt"
	"strings"
)

// ProcurementType selects one of the two published feeds.
type ProcurementType int

const (
	// PublicTenders is the open public-tender feed ("licitaciones").
	PublicTenders ProcurementType = iota
	// MinorContracts is the minor-contracts feed ("contratos menores").
	MinorContracts
)

// Landing pages hosting the period ZIP links for each feed.
const (
	publicTendersURL = "https://www.hacienda.gob.es/es-ES/GobiernoAbierto/Datos%20Abiertos/Paginas/licitaciones_plataforma_contratacion.aspx"
	minorContractsURL = "https://www.hacienda.gob.es/es-ES/GobiernoAbierto/Datos%20Abiertos/Paginas/LicitacionesContratante.aspx"
)

// ParseProcurementType resolves a user-supplied feed name. Matching is
// case-insensitive and accepts the short aliases used on the command line.
// Anything unrecognized is an error rather than a silent default.
func ParseProcurementType(s string) (ProcurementType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "mc", "min", "minor-contracts":
		return MinorContracts, nil
	case "pt", "pub", "public-tenders":
		return PublicTenders, nil
	default:
		return 0, fmt.Errorf("unknown procurement type %q (want one of mc, min, minor-contracts, pt, pub, public-tenders)", s)
	}
}

// All returns both feeds in a fixed order.
func All() []ProcurementType {
	return []ProcurementType{PublicTenders, MinorContracts}
}

func (t ProcurementType) String() string {
	switch t {
	case MinorContracts:
		return "minor-contracts"
	default:
		return "public-tenders"
	}
}

// Dir is the per-feed subdirectory used under both the download and
// output roots.
func (t ProcurementType) Dir() string {
	switch t {
	case MinorContracts:
		return "mc"
	default:
		return "pt"
	}
}

// LandingURL is the page listing one ZIP link per period for the feed.
func (t ProcurementType) LandingURL() string {
	switch t {
	case MinorContracts:
		return minorContractsURL
	default:
		return publicTendersURL
	}
}
