package parser

import (
	"strings"
	"testing"
)

func deref(p *string) string {
	if p == nil {
		return "<nil>"
	}
	return *p
}

const simpleFeed = `<?xml version="1.0" encoding="UTF-8"?>
<feed xmlns="http://www.w3.org/2005/Atom">
  <id>https://example.es/feed</id>
  <title>Plataforma de Contratación</title>
  <entry>
    <id>id1</id>
    <title>Entry One</title>
    <summary>First summary</summary>
    <updated>2023-05-01T10:00:00Z</updated>
    <link href="https://example.es/1"/>
  </entry>
  <entry>
    <id>id2</id>
    <title>Entry Two</title>
    <link href="https://example.es/2"/>
  </entry>
  <entry>
    <summary>neither id nor title</summary>
  </entry>
</feed>`

func TestParseDocumentEntries(t *testing.T) {
	records, err := ParseDocument([]byte(simpleFeed), false)
	if err != nil {
		t.Fatalf("ParseDocument: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("got %d records, want 2", len(records))
	}
	first := records[0]
	if deref(first.EntryID) != "id1" || deref(first.EntryTitle) != "Entry One" {
		t.Errorf("first entry = %q / %q", deref(first.EntryID), deref(first.EntryTitle))
	}
	if deref(first.EntrySummary) != "First summary" {
		t.Errorf("summary = %q", deref(first.EntrySummary))
	}
	if deref(first.EntryUpdated) != "2023-05-01T10:00:00Z" {
		t.Errorf("updated = %q", deref(first.EntryUpdated))
	}
	if deref(first.EntryLink) != "https://example.es/1" {
		t.Errorf("link = %q", deref(first.EntryLink))
	}
	if deref(records[1].EntryID) != "id2" {
		t.Errorf("second entry id = %q", deref(records[1].EntryID))
	}
}

const folderFeed = `<?xml version="1.0" encoding="UTF-8"?>
<feed xmlns="http://www.w3.org/2005/Atom"
      xmlns:cac="urn:oasis:names:specification:ubl:schema:xsd:CommonAggregateComponents-2"
      xmlns:cbc="urn:oasis:names:specification:ubl:schema:xsd:CommonBasicComponents-2"
      xmlns:cac-place-ext="urn:dgpe:names:draft:codice-place-ext:schema:xsd:CommonAggregateComponents-2"
      xmlns:cbc-place-ext="urn:dgpe:names:draft:codice-place-ext:schema:xsd:CommonBasicComponents-2">
  <entry>
    <id>exp-100</id>
    <title>Obras de mejora</title>
    <updated>2023-06-15T08:30:00Z</updated>
    <link href="https://example.es/exp-100"/>
    <cac-place-ext:ContractFolderStatus>
      <cbc:ContractFolderID>EXP/2023/100</cbc:ContractFolderID>
      <cbc-place-ext:ContractFolderStatusCode listURI="https://example.es/codice/estado">PUB</cbc-place-ext:ContractFolderStatusCode>
      <cac-place-ext:LocatedContractingParty>
        <cbc-place-ext:ContractingPartyTypeCode listURI="https://example.es/codice/tipo-organo">1</cbc-place-ext:ContractingPartyTypeCode>
        <cbc:ActivityCode listURI="https://example.es/codice/actividad">10</cbc:ActivityCode>
        <cac:Party>
          <cbc:WebsiteURI>https://ayto.example.es</cbc:WebsiteURI>
          <cac:PartyName>
            <cbc:Name>Ayuntamiento de Ejemplo</cbc:Name>
          </cac:PartyName>
          <cac:PostalAddress>
            <cbc:CityName>Madrid</cbc:CityName>
            <cbc:PostalZone>28001</cbc:PostalZone>
            <cac:Country>
              <cbc:IdentificationCode listURI="https://example.es/codice/paises">ES</cbc:IdentificationCode>
            </cac:Country>
          </cac:PostalAddress>
        </cac:Party>
      </cac-place-ext:LocatedContractingParty>
      <cac:ProcurementProject>
        <cbc:Name>Obras de mejora de calzada</cbc:Name>
        <cbc:TypeCode listURI="https://example.es/codice/tipo-contrato">3</cbc:TypeCode>
        <cbc:SubTypeCode listURI="https://example.es/codice/subtipo">1</cbc:SubTypeCode>
        <cac:BudgetAmount>
          <cbc:TotalAmount currencyID="EUR">121000.00</cbc:TotalAmount>
          <cbc:TaxExclusiveAmount currencyID="EUR">100000.00</cbc:TaxExclusiveAmount>
        </cac:BudgetAmount>
        <cac:RequiredCommodityClassification>
          <cbc:ItemClassificationCode listURI="https://example.es/codice/cpv">45233140</cbc:ItemClassificationCode>
        </cac:RequiredCommodityClassification>
        <cac:RequiredCommodityClassification>
          <cbc:ItemClassificationCode>45233150</cbc:ItemClassificationCode>
        </cac:RequiredCommodityClassification>
        <cac:RealizedLocation>
          <cac:Country>
            <cbc:IdentificationCode listURI="https://example.es/codice/paises">ES</cbc:IdentificationCode>
            <cbc:Name>España</cbc:Name>
          </cac:Country>
        </cac:RealizedLocation>
      </cac:ProcurementProject>
      <cac:TenderingTerms>
        <cbc:FundingProgramCode listURI="https://example.es/codice/fondos">EU</cbc:FundingProgramCode>
        <cac:AwardingTerms>
          <cac:AwardingCriteria>
            <cbc-place-ext:AwardingCriteriaTypeCode listURI="https://example.es/codice/criterios">PRICE</cbc-place-ext:AwardingCriteriaTypeCode>
          </cac:AwardingCriteria>
        </cac:AwardingTerms>
      </cac:TenderingTerms>
      <cac:TenderingProcess>
        <cbc:ProcedureCode listURI="https://example.es/codice/procedimiento">1</cbc:ProcedureCode>
        <cbc:UrgencyCode listURI="https://example.es/codice/urgencia">2</cbc:UrgencyCode>
        <cac:TenderSubmissionDeadlinePeriod>
          <cbc:EndDate>2023-07-01</cbc:EndDate>
        </cac:TenderSubmissionDeadlinePeriod>
      </cac:TenderingProcess>
    </cac-place-ext:ContractFolderStatus>
  </entry>
</feed>`

func TestParseDocumentContractFolder(t *testing.T) {
	records, err := ParseDocument([]byte(folderFeed), false)
	if err != nil {
		t.Fatalf("ParseDocument: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("got %d records, want 1", len(records))
	}
	rec := records[0]

	if deref(rec.ContractID) != "EXP/2023/100" {
		t.Errorf("contract id = %q", deref(rec.ContractID))
	}
	if deref(rec.StatusCode) != "PUB" {
		t.Errorf("status code = %q", deref(rec.StatusCode))
	}
	if deref(rec.StatusCodeListURI) != "https://example.es/codice/estado" {
		t.Errorf("status list uri = %q", deref(rec.StatusCodeListURI))
	}

	if deref(rec.ContractingPartyName) != "Ayuntamiento de Ejemplo" {
		t.Errorf("party name = %q", deref(rec.ContractingPartyName))
	}
	if deref(rec.ContractingPartyWebsite) != "https://ayto.example.es" {
		t.Errorf("party website = %q", deref(rec.ContractingPartyWebsite))
	}
	if deref(rec.ContractingPartyTypeCode) != "1" {
		t.Errorf("party type = %q", deref(rec.ContractingPartyTypeCode))
	}
	if deref(rec.ContractingPartyCity) != "Madrid" || deref(rec.ContractingPartyZip) != "28001" {
		t.Errorf("party address = %q / %q", deref(rec.ContractingPartyCity), deref(rec.ContractingPartyZip))
	}
	if deref(rec.ContractingPartyCountryCode) != "ES" {
		t.Errorf("party country = %q", deref(rec.ContractingPartyCountryCode))
	}

	if deref(rec.ProjectName) != "Obras de mejora de calzada" {
		t.Errorf("project name = %q", deref(rec.ProjectName))
	}
	if deref(rec.ProjectTypeCode) != "3" || deref(rec.ProjectSubTypeCode) != "1" {
		t.Errorf("project type/subtype = %q / %q", deref(rec.ProjectTypeCode), deref(rec.ProjectSubTypeCode))
	}
	if deref(rec.ProjectTotalAmount) != "121000.00" || deref(rec.ProjectTotalCurrency) != "EUR" {
		t.Errorf("project total = %q %q", deref(rec.ProjectTotalAmount), deref(rec.ProjectTotalCurrency))
	}
	if deref(rec.ProjectTaxExclusiveAmount) != "100000.00" {
		t.Errorf("project tax exclusive = %q", deref(rec.ProjectTaxExclusiveAmount))
	}
	if deref(rec.ProjectCPVCode) != "45233140_45233150" {
		t.Errorf("cpv concat = %q", deref(rec.ProjectCPVCode))
	}
	if deref(rec.ProjectCountryCode) != "ES" {
		t.Errorf("project country = %q", deref(rec.ProjectCountryCode))
	}
	// The Name inside RealizedLocation/Country must not clobber the
	// project name captured earlier.
	if deref(rec.ProjectName) != "Obras de mejora de calzada" {
		t.Errorf("project name clobbered: %q", deref(rec.ProjectName))
	}

	if deref(rec.TermsFundingProgramCode) != "EU" {
		t.Errorf("funding program = %q", deref(rec.TermsFundingProgramCode))
	}
	if deref(rec.TermsAwardCriteriaTypeCode) != "PRICE" {
		t.Errorf("award criteria = %q", deref(rec.TermsAwardCriteriaTypeCode))
	}
	if deref(rec.ProcessEndDate) != "2023-07-01" {
		t.Errorf("deadline = %q", deref(rec.ProcessEndDate))
	}
	if deref(rec.ProcessProcedureCode) != "1" || deref(rec.ProcessUrgencyCode) != "2" {
		t.Errorf("procedure/urgency = %q / %q", deref(rec.ProcessProcedureCode), deref(rec.ProcessUrgencyCode))
	}

	if rec.CFSRawXML != nil {
		t.Error("raw xml should be absent by default")
	}
}

const lotResultFeed = `<?xml version="1.0" encoding="UTF-8"?>
<feed xmlns="http://www.w3.org/2005/Atom"
      xmlns:cac="urn:oasis:names:specification:ubl:schema:xsd:CommonAggregateComponents-2"
      xmlns:cbc="urn:oasis:names:specification:ubl:schema:xsd:CommonBasicComponents-2"
      xmlns:cac-place-ext="urn:dgpe:names:draft:codice-place-ext:schema:xsd:CommonAggregateComponents-2">
  <entry>
    <id>plain-1</id>
    <title>Sin lotes</title>
  </entry>
  <entry>
    <id>lots-1</id>
    <title>Con lotes</title>
    <cac-place-ext:ContractFolderStatus>
      <cbc:ContractFolderID>EXP/2023/200</cbc:ContractFolderID>
      <cac:ProcurementProjectLot>
        <cbc:ID schemeName="ID_LOTE">1</cbc:ID>
        <cac:ProcurementProject>
          <cbc:Name>Lote uno</cbc:Name>
          <cac:BudgetAmount>
            <cbc:TotalAmount currencyID="EUR">60500.00</cbc:TotalAmount>
            <cbc:TaxExclusiveAmount currencyID="EUR">50000.00</cbc:TaxExclusiveAmount>
          </cac:BudgetAmount>
          <cac:RequiredCommodityClassification>
            <cbc:ItemClassificationCode>45233140</cbc:ItemClassificationCode>
          </cac:RequiredCommodityClassification>
        </cac:ProcurementProject>
      </cac:ProcurementProjectLot>
      <cac:ProcurementProjectLot>
        <cbc:ID schemeName="ID_LOTE">2</cbc:ID>
        <cac:ProcurementProject>
          <cbc:Name>Lote dos</cbc:Name>
        </cac:ProcurementProject>
      </cac:ProcurementProjectLot>
      <cac:TenderResult>
        <cbc:ResultCode listURI="https://example.es/codice/resultado">8</cbc:ResultCode>
        <cbc:AwardDate>2023-08-01</cbc:AwardDate>
        <cac:WinningParty>
          <cac:PartyName>
            <cbc:Name>Constructora Uno SL</cbc:Name>
          </cac:PartyName>
        </cac:WinningParty>
        <cac:AwardedTenderedProject>
          <cbc:ProcurementProjectLotID>1</cbc:ProcurementProjectLotID>
          <cac:LegalMonetaryTotal>
            <cbc:TaxExclusiveAmount currencyID="EUR">48000.00</cbc:TaxExclusiveAmount>
            <cbc:PayableAmount currencyID="EUR">58080.00</cbc:PayableAmount>
          </cac:LegalMonetaryTotal>
        </cac:AwardedTenderedProject>
      </cac:TenderResult>
      <cac:TenderResult>
        <cbc:ResultCode>8</cbc:ResultCode>
        <cac:AwardedTenderedProject>
          <cbc:ProcurementProjectLotID>1</cbc:ProcurementProjectLotID>
        </cac:AwardedTenderedProject>
      </cac:TenderResult>
      <cac:TenderResult>
        <cbc:ResultCode>8</cbc:ResultCode>
        <cac:AwardedTenderedProject>
          <cbc:ProcurementProjectLotID>2</cbc:ProcurementProjectLotID>
        </cac:AwardedTenderedProject>
      </cac:TenderResult>
    </cac-place-ext:ContractFolderStatus>
  </entry>
</feed>`

func TestParseDocumentLotsAndResults(t *testing.T) {
	records, err := ParseDocument([]byte(lotResultFeed), false)
	if err != nil {
		t.Fatalf("ParseDocument: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("got %d records, want 2", len(records))
	}

	rec := records[1]
	if len(rec.ProjectLots) != 2 {
		t.Fatalf("got %d lots, want 2", len(rec.ProjectLots))
	}
	if deref(rec.ProjectLots[0].ID) != "1" || deref(rec.ProjectLots[0].Name) != "Lote uno" {
		t.Errorf("lot 1 = %q / %q", deref(rec.ProjectLots[0].ID), deref(rec.ProjectLots[0].Name))
	}
	if deref(rec.ProjectLots[0].TotalAmount) != "60500.00" || deref(rec.ProjectLots[0].TotalCurrency) != "EUR" {
		t.Errorf("lot 1 total = %q %q", deref(rec.ProjectLots[0].TotalAmount), deref(rec.ProjectLots[0].TotalCurrency))
	}
	if deref(rec.ProjectLots[0].CPVCode) != "45233140" {
		t.Errorf("lot 1 cpv = %q", deref(rec.ProjectLots[0].CPVCode))
	}
	if deref(rec.ProjectLots[1].ID) != "2" || deref(rec.ProjectLots[1].Name) != "Lote dos" {
		t.Errorf("lot 2 = %q / %q", deref(rec.ProjectLots[1].ID), deref(rec.ProjectLots[1].Name))
	}

	if len(rec.TenderResults) != 3 {
		t.Fatalf("got %d results, want 3", len(rec.TenderResults))
	}
	wantIDs := []string{"1", "2", "3"}
	wantLots := []string{"1", "1", "2"}
	for i, res := range rec.TenderResults {
		if deref(res.ResultID) != wantIDs[i] {
			t.Errorf("result %d id = %q, want %q", i, deref(res.ResultID), wantIDs[i])
		}
		if deref(res.ResultLotID) != wantLots[i] {
			t.Errorf("result %d lot = %q, want %q", i, deref(res.ResultLotID), wantLots[i])
		}
	}

	first := rec.TenderResults[0]
	if deref(first.WinningParty) != "Constructora Uno SL" {
		t.Errorf("winning party = %q", deref(first.WinningParty))
	}
	if deref(first.AwardDate) != "2023-08-01" {
		t.Errorf("award date = %q", deref(first.AwardDate))
	}
	if deref(first.TaxExclusiveAmount) != "48000.00" || deref(first.PayableAmount) != "58080.00" {
		t.Errorf("amounts = %q / %q", deref(first.TaxExclusiveAmount), deref(first.PayableAmount))
	}

	// The winning party's name must not leak into the contracting party.
	if rec.ContractingPartyName != nil {
		t.Errorf("contracting party name = %q, want nil", deref(rec.ContractingPartyName))
	}
}

func TestParseDocumentResultWithoutLot(t *testing.T) {
	doc := `<?xml version="1.0"?>
<feed xmlns="http://www.w3.org/2005/Atom"
      xmlns:cac="urn:cac" xmlns:cbc="urn:cbc" xmlns:ext="urn:ext">
  <entry>
    <id>x</id>
    <ext:ContractFolderStatus>
      <cac:TenderResult>
        <cbc:ResultCode>8</cbc:ResultCode>
      </cac:TenderResult>
    </ext:ContractFolderStatus>
  </entry>
</feed>`
	records, err := ParseDocument([]byte(doc), false)
	if err != nil {
		t.Fatalf("ParseDocument: %v", err)
	}
	if len(records) != 1 || len(records[0].TenderResults) != 1 {
		t.Fatalf("records = %+v", records)
	}
	res := records[0].TenderResults[0]
	if deref(res.ResultID) != "1" {
		t.Errorf("result id = %q", deref(res.ResultID))
	}
	if deref(res.ResultLotID) != "0" {
		t.Errorf("result lot id = %q, want sentinel 0", deref(res.ResultLotID))
	}
}

func TestParseDocumentRawXML(t *testing.T) {
	records, err := ParseDocument([]byte(folderFeed), true)
	if err != nil {
		t.Fatalf("ParseDocument: %v", err)
	}
	raw := records[0].CFSRawXML
	if raw == nil {
		t.Fatal("raw xml missing with retention on")
	}
	if !strings.HasPrefix(*raw, "<cac-place-ext:ContractFolderStatus>") {
		t.Errorf("raw xml start = %.60q", *raw)
	}
	if !strings.HasSuffix(*raw, "</cac-place-ext:ContractFolderStatus>") {
		t.Errorf("raw xml does not end on the closing tag: %.80q", *raw)
	}
	if !strings.Contains(*raw, "<cbc:ContractFolderID>EXP/2023/100</cbc:ContractFolderID>") {
		t.Error("raw xml lost the source bytes")
	}
}

func TestParseDocumentMalformed(t *testing.T) {
	_, err := ParseDocument([]byte(`<feed><entry><id>x</id>`), false)
	if err == nil {
		t.Fatal("expected error for truncated document")
	}
}
