package parser

import (
	"encoding/xml"
	"strconv"
)

// activeField identifies which leaf element's text is being captured.
type activeField int

const (
	fieldNone activeField = iota
	fieldStatusCode
	fieldContractID
	fieldProjectName
	fieldProjectTypeCode
	fieldProjectSubTypeCode
	fieldProjectTotalAmount
	fieldProjectTaxExclusiveAmount
	fieldProjectCPVCode
	fieldProjectCountryCode
	fieldLotID
	fieldLotName
	fieldLotTotalAmount
	fieldLotTaxExclusiveAmount
	fieldLotCPVCode
	fieldLotCountryCode
	fieldPartyName
	fieldPartyWebsite
	fieldPartyTypeCode
	fieldPartyActivityCode
	fieldPartyCity
	fieldPartyZip
	fieldPartyCountryCode
	fieldResultCode
	fieldResultDescription
	fieldResultWinningParty
	fieldResultSMEIndicator
	fieldResultAwardDate
	fieldResultTaxExclusiveAmount
	fieldResultPayableAmount
	fieldResultLotID
	fieldTermsFundingProgramCode
	fieldTermsAwardCriteriaTypeCode
	fieldProcessEndDate
	fieldProcessProcedureCode
	fieldProcessUrgencyCode
)

// folderScope walks one ContractFolderStatus subtree and accumulates the
// flattened record. All state is local to the subtree, so the result
// counter and name-dedup flags reset per document.
type folderScope struct {
	rec ContractFolderRecord

	currentLot          *ProjectLot
	currentResult       *TenderResult
	currentResultLotIDs []string
	resultLotBuffer     *string
	resultCounter       int

	inProject              bool
	inProjectLot           bool
	inContractingParty     bool
	inTenderResult         bool
	inTenderingProcess     bool
	inTenderingTerms       bool
	inParty                bool
	inPartyName            bool
	inWinningParty         bool
	inCountry              bool
	inPostalAddress        bool
	inPostalAddressCountry bool
	inBudgetAmount         bool
	inRequiredClass        bool
	inAwardedProject       bool
	inLegalMonetaryTotal   bool
	inLotBudgetAmount      bool
	inLotRequiredClass     bool
	inLotCountry           bool
	inAwardingTerms        bool
	inAwardingCriteria     bool
	inDeadlinePeriod       bool

	active              activeField
	sawText             bool
	projectNameCaptured bool
	lotNameCaptured     bool
}

func newFolderScope() *folderScope {
	return &folderScope{}
}

func (s *folderScope) handleStart(el xml.StartElement) {
	local := el.Name.Local
	s.startScopeFlags(local)

	field := s.determineActiveField(local)
	if field == fieldNone && s.inProjectLot && local == "ID" && hasAttr(el, "schemeName", "ID_LOTE") {
		field = fieldLotID
	}
	if field == fieldResultLotID {
		s.resultLotBuffer = nil
	} else if field != fieldNone {
		s.prepareMultivalue(field)
		s.captureCurrency(field, el)
		s.captureListURI(field, el)
	}
	s.active = field
	s.sawText = false
}

func (s *folderScope) handleText(text string) {
	if s.active == fieldNone {
		return
	}
	s.sawText = true
	if text == "" {
		return
	}
	if s.active == fieldResultLotID {
		if s.resultLotBuffer == nil {
			s.resultLotBuffer = new(string)
		}
		*s.resultLotBuffer += text
		return
	}
	target := s.fieldRef(s.active)
	if *target == nil {
		v := text
		*target = &v
	} else {
		**target += text
	}
}

func (s *folderScope) handleEnd(el xml.EndElement) {
	local := el.Name.Local

	if local == "ProcurementProjectLotID" {
		s.pushResultLotID()
	}

	// An element that closed without any character data still counts as
	// a capture: self-closing tags carry meaning in this dialect.
	if s.active != fieldNone && !s.sawText && s.active != fieldResultLotID {
		s.ensureFieldExists(s.active)
	}

	if s.inProjectLot && local == "Name" && s.currentLot != nil && s.currentLot.Name != nil {
		s.lotNameCaptured = true
	} else if s.inProject && !s.inProjectLot && local == "Name" && s.rec.ProjectName != nil {
		s.projectNameCaptured = true
	}

	s.endScopeFlags(local)
	s.active = fieldNone
}

// result finalizes any open lot or tender result and returns the record.
func (s *folderScope) result() ContractFolderRecord {
	s.pushCurrentLot()
	s.pushCurrentResult()
	return s.rec
}

func (s *folderScope) startScopeFlags(local string) {
	switch local {
	case "ProcurementProjectLot":
		s.inProjectLot = true
		if s.currentLot != nil {
			s.pushCurrentLot()
		}
		s.currentLot = &ProjectLot{}
		s.lotNameCaptured = false
	case "ProcurementProject":
		s.inProject = true
	case "LocatedContractingParty":
		s.inContractingParty = true
	case "TenderResult":
		s.inTenderResult = true
		s.startTenderResult()
	case "TenderingProcess":
		s.inTenderingProcess = true
	case "Party":
		s.inParty = true
	case "PartyName":
		s.inPartyName = true
	case "WinningParty":
		s.inWinningParty = true
	case "PostalAddress":
		s.inPostalAddress = true
	case "Country":
		switch {
		case s.inProjectLot:
			s.inLotCountry = true
		case s.inPostalAddress:
			s.inPostalAddressCountry = true
		default:
			s.inCountry = true
		}
	case "TenderingTerms":
		s.inTenderingTerms = true
	case "AwardingTerms":
		s.inAwardingTerms = true
	case "AwardingCriteria":
		s.inAwardingCriteria = true
	case "TenderSubmissionDeadlinePeriod":
		s.inDeadlinePeriod = true
	}

	if s.inProject && !s.inProjectLot {
		switch local {
		case "BudgetAmount":
			s.inBudgetAmount = true
		case "RequiredCommodityClassification":
			s.inRequiredClass = true
		}
	}
	if s.inProjectLot {
		switch local {
		case "BudgetAmount":
			s.inLotBudgetAmount = true
		case "RequiredCommodityClassification":
			s.inLotRequiredClass = true
		}
	}
	if s.inTenderResult {
		if local == "AwardedTenderedProject" {
			s.inAwardedProject = true
		}
		if s.inAwardedProject && local == "LegalMonetaryTotal" {
			s.inLegalMonetaryTotal = true
		}
	}
}

func (s *folderScope) endScopeFlags(local string) {
	switch local {
	case "ProcurementProjectLot":
		s.inProjectLot = false
		s.inLotBudgetAmount = false
		s.inLotRequiredClass = false
		s.inLotCountry = false
		s.pushCurrentLot()
	case "ProcurementProject":
		s.inProject = false
		s.inBudgetAmount = false
		s.inRequiredClass = false
	case "LocatedContractingParty":
		s.inContractingParty = false
	case "TenderResult":
		s.inTenderResult = false
		s.inAwardedProject = false
		s.inLegalMonetaryTotal = false
		s.pushCurrentResult()
	case "TenderingProcess":
		s.inTenderingProcess = false
	case "Party":
		s.inParty = false
	case "PartyName":
		s.inPartyName = false
	case "WinningParty":
		s.inWinningParty = false
	case "PostalAddress":
		s.inPostalAddress = false
		s.inPostalAddressCountry = false
	case "Country":
		switch {
		case s.inProjectLot:
			s.inLotCountry = false
		case s.inPostalAddress:
			s.inPostalAddressCountry = false
		default:
			s.inCountry = false
		}
	case "TenderingTerms":
		s.inTenderingTerms = false
	case "AwardingTerms":
		s.inAwardingTerms = false
	case "AwardingCriteria":
		s.inAwardingCriteria = false
	case "TenderSubmissionDeadlinePeriod":
		s.inDeadlinePeriod = false
	}

	switch local {
	case "BudgetAmount":
		s.inBudgetAmount = false
		s.inLotBudgetAmount = false
	case "RequiredCommodityClassification":
		s.inRequiredClass = false
		s.inLotRequiredClass = false
	case "AwardedTenderedProject":
		s.inAwardedProject = false
	case "LegalMonetaryTotal":
		s.inLegalMonetaryTotal = false
	}
}

// determineActiveField maps an element to the field it feeds, given the
// current nesting. The project-lot branch wins over the project branch
// while inside a lot.
func (s *folderScope) determineActiveField(local string) activeField {
	switch local {
	case "ContractFolderStatusCode":
		return fieldStatusCode
	case "ContractFolderID":
		return fieldContractID
	}

	if s.inProjectLot {
		switch {
		case local == "Name" && !s.lotNameCaptured && !s.inLotCountry:
			return fieldLotName
		case s.inLotBudgetAmount && local == "TotalAmount":
			return fieldLotTotalAmount
		case s.inLotBudgetAmount && local == "TaxExclusiveAmount":
			return fieldLotTaxExclusiveAmount
		case s.inLotRequiredClass && local == "ItemClassificationCode":
			return fieldLotCPVCode
		case s.inLotCountry && local == "IdentificationCode":
			return fieldLotCountryCode
		}
	}

	if s.inProject && !s.inProjectLot {
		switch {
		case local == "Name" && !s.projectNameCaptured && !s.inCountry:
			return fieldProjectName
		case local == "TypeCode":
			return fieldProjectTypeCode
		case local == "SubTypeCode":
			return fieldProjectSubTypeCode
		case s.inBudgetAmount && local == "TotalAmount":
			return fieldProjectTotalAmount
		case s.inBudgetAmount && local == "TaxExclusiveAmount":
			return fieldProjectTaxExclusiveAmount
		case s.inRequiredClass && local == "ItemClassificationCode":
			return fieldProjectCPVCode
		case s.inCountry && local == "IdentificationCode":
			return fieldProjectCountryCode
		}
	}

	if s.inContractingParty {
		switch local {
		case "ContractingPartyTypeCode":
			return fieldPartyTypeCode
		case "ActivityCode":
			return fieldPartyActivityCode
		}
		if s.inParty {
			if local == "WebsiteURI" {
				return fieldPartyWebsite
			}
			if s.inPartyName && local == "Name" {
				return fieldPartyName
			}
			if s.inPostalAddress {
				switch {
				case local == "CityName":
					return fieldPartyCity
				case local == "PostalZone":
					return fieldPartyZip
				case s.inPostalAddressCountry && local == "IdentificationCode":
					return fieldPartyCountryCode
				}
			}
		}
	}

	if s.inTenderResult {
		switch local {
		case "ProcurementProjectLotID":
			return fieldResultLotID
		case "ResultCode":
			return fieldResultCode
		case "Description":
			return fieldResultDescription
		case "SMEAwardedIndicator":
			return fieldResultSMEIndicator
		case "AwardDate":
			return fieldResultAwardDate
		}
		if s.inWinningParty && s.inPartyName && local == "Name" {
			return fieldResultWinningParty
		}
	}

	if s.inLegalMonetaryTotal {
		switch local {
		case "TaxExclusiveAmount":
			return fieldResultTaxExclusiveAmount
		case "PayableAmount":
			return fieldResultPayableAmount
		}
	}

	if s.inTenderingProcess {
		switch {
		case s.inDeadlinePeriod && local == "EndDate":
			return fieldProcessEndDate
		case local == "ProcedureCode":
			return fieldProcessProcedureCode
		case local == "UrgencyCode":
			return fieldProcessUrgencyCode
		}
	}

	if s.inTenderingTerms {
		if local == "FundingProgramCode" {
			return fieldTermsFundingProgramCode
		}
		if s.inAwardingTerms && s.inAwardingCriteria && local == "AwardingCriteriaTypeCode" {
			return fieldTermsAwardCriteriaTypeCode
		}
	}

	return fieldNone
}

// prepareMultivalue joins repeated occurrences of a field with "_", so
// e.g. several CPV codes end up as one concatenated value.
func (s *folderScope) prepareMultivalue(field activeField) {
	target := s.fieldRef(field)
	if *target != nil && **target != "" {
		**target += "_"
	}
}

func (s *folderScope) ensureFieldExists(field activeField) {
	target := s.fieldRef(field)
	if *target == nil {
		*target = new(string)
	}
}

func (s *folderScope) fieldRef(field activeField) **string {
	switch field {
	case fieldStatusCode:
		return &s.rec.StatusCode
	case fieldContractID:
		return &s.rec.ContractID
	case fieldProjectName:
		return &s.rec.ProjectName
	case fieldProjectTypeCode:
		return &s.rec.ProjectTypeCode
	case fieldProjectSubTypeCode:
		return &s.rec.ProjectSubTypeCode
	case fieldProjectTotalAmount:
		return &s.rec.ProjectTotalAmount
	case fieldProjectTaxExclusiveAmount:
		return &s.rec.ProjectTaxExclusiveAmount
	case fieldProjectCPVCode:
		return &s.rec.ProjectCPVCode
	case fieldProjectCountryCode:
		return &s.rec.ProjectCountryCode
	case fieldLotID, fieldLotName, fieldLotTotalAmount, fieldLotTaxExclusiveAmount, fieldLotCPVCode, fieldLotCountryCode:
		return s.lotFieldRef(field)
	case fieldPartyName:
		return &s.rec.ContractingPartyName
	case fieldPartyWebsite:
		return &s.rec.ContractingPartyWebsite
	case fieldPartyTypeCode:
		return &s.rec.ContractingPartyTypeCode
	case fieldPartyActivityCode:
		return &s.rec.ContractingPartyActivityCode
	case fieldPartyCity:
		return &s.rec.ContractingPartyCity
	case fieldPartyZip:
		return &s.rec.ContractingPartyZip
	case fieldPartyCountryCode:
		return &s.rec.ContractingPartyCountryCode
	case fieldResultCode, fieldResultDescription, fieldResultWinningParty, fieldResultSMEIndicator,
		fieldResultAwardDate, fieldResultTaxExclusiveAmount, fieldResultPayableAmount:
		return s.resultFieldRef(field)
	case fieldTermsFundingProgramCode:
		return &s.rec.TermsFundingProgramCode
	case fieldTermsAwardCriteriaTypeCode:
		return &s.rec.TermsAwardCriteriaTypeCode
	case fieldProcessEndDate:
		return &s.rec.ProcessEndDate
	case fieldProcessProcedureCode:
		return &s.rec.ProcessProcedureCode
	case fieldProcessUrgencyCode:
		return &s.rec.ProcessUrgencyCode
	default:
		return s.resultLotBufferRef()
	}
}

func (s *folderScope) resultLotBufferRef() **string {
	return &s.resultLotBuffer
}

func (s *folderScope) lotFieldRef(field activeField) **string {
	if s.currentLot == nil {
		s.currentLot = &ProjectLot{}
	}
	lot := s.currentLot
	switch field {
	case fieldLotID:
		return &lot.ID
	case fieldLotName:
		return &lot.Name
	case fieldLotTotalAmount:
		return &lot.TotalAmount
	case fieldLotTaxExclusiveAmount:
		return &lot.TaxExclusiveAmount
	case fieldLotCPVCode:
		return &lot.CPVCode
	default:
		return &lot.CountryCode
	}
}

func (s *folderScope) resultFieldRef(field activeField) **string {
	row := s.currentResultRow()
	switch field {
	case fieldResultCode:
		return &row.ResultCode
	case fieldResultDescription:
		return &row.Description
	case fieldResultWinningParty:
		return &row.WinningParty
	case fieldResultSMEIndicator:
		return &row.SMEAwardedIndicator
	case fieldResultAwardDate:
		return &row.AwardDate
	case fieldResultTaxExclusiveAmount:
		return &row.TaxExclusiveAmount
	default:
		return &row.PayableAmount
	}
}

func (s *folderScope) currentResultRow() *TenderResult {
	if s.currentResult == nil {
		id := strconv.Itoa(s.resultCounter)
		s.currentResult = &TenderResult{ResultID: &id}
	}
	return s.currentResult
}

func (s *folderScope) startTenderResult() {
	s.resultCounter++
	id := strconv.Itoa(s.resultCounter)
	s.currentResult = &TenderResult{ResultID: &id}
	s.currentResultLotIDs = s.currentResultLotIDs[:0]
	s.resultLotBuffer = nil
}

func (s *folderScope) pushCurrentLot() {
	if s.currentLot != nil {
		s.rec.ProjectLots = append(s.rec.ProjectLots, *s.currentLot)
		s.currentLot = nil
	}
}

func (s *folderScope) pushResultLotID() {
	if s.resultLotBuffer != nil {
		if *s.resultLotBuffer != "" {
			s.currentResultLotIDs = append(s.currentResultLotIDs, *s.resultLotBuffer)
		}
		s.resultLotBuffer = nil
	}
}

// pushCurrentResult fans the result out per awarded lot: one row per
// referenced lot id, or a single row with the "0" sentinel when the
// result names no lot.
func (s *folderScope) pushCurrentResult() {
	if s.currentResult == nil {
		return
	}
	row := *s.currentResult
	s.currentResult = nil
	s.pushResultLotID()
	lotIDs := s.currentResultLotIDs
	s.currentResultLotIDs = nil

	if len(lotIDs) == 0 {
		sentinel := "0"
		row.ResultLotID = &sentinel
		s.rec.TenderResults = append(s.rec.TenderResults, row)
		return
	}
	for _, lotID := range lotIDs {
		cloned := row
		id := lotID
		cloned.ResultLotID = &id
		s.rec.TenderResults = append(s.rec.TenderResults, cloned)
	}
}

func (s *folderScope) captureCurrency(field activeField, el xml.StartElement) {
	currency, ok := attrValue(el, "currencyID")
	if !ok {
		return
	}
	switch field {
	case fieldProjectTotalAmount:
		s.rec.ProjectTotalCurrency = &currency
	case fieldProjectTaxExclusiveAmount:
		s.rec.ProjectTaxExclusiveCurrency = &currency
	case fieldLotTotalAmount:
		if s.currentLot != nil {
			s.currentLot.TotalCurrency = &currency
		}
	case fieldLotTaxExclusiveAmount:
		if s.currentLot != nil {
			s.currentLot.TaxExclusiveCurrency = &currency
		}
	case fieldResultTaxExclusiveAmount:
		s.currentResultRow().TaxExclusiveCurrency = &currency
	case fieldResultPayableAmount:
		s.currentResultRow().PayableCurrency = &currency
	}
}

func (s *folderScope) captureListURI(field activeField, el xml.StartElement) {
	uri, ok := attrValue(el, "listURI")
	if !ok {
		return
	}
	switch field {
	case fieldStatusCode:
		s.rec.StatusCodeListURI = &uri
	case fieldPartyTypeCode:
		s.rec.ContractingPartyTypeCodeListURI = &uri
	case fieldPartyActivityCode:
		s.rec.ContractingPartyActivityCodeListURI = &uri
	case fieldPartyCountryCode:
		s.rec.ContractingPartyCountryCodeListURI = &uri
	case fieldProjectTypeCode:
		s.rec.ProjectTypeCodeListURI = &uri
	case fieldProjectSubTypeCode:
		s.rec.ProjectSubTypeCodeListURI = &uri
	case fieldProjectCPVCode:
		s.rec.ProjectCPVCodeListURI = &uri
	case fieldProjectCountryCode:
		s.rec.ProjectCountryCodeListURI = &uri
	case fieldLotCPVCode:
		if s.currentLot != nil {
			s.currentLot.CPVCodeListURI = &uri
		}
	case fieldLotCountryCode:
		if s.currentLot != nil {
			s.currentLot.CountryCodeListURI = &uri
		}
	case fieldResultCode:
		s.currentResultRow().ResultCodeListURI = &uri
	case fieldTermsFundingProgramCode:
		s.rec.TermsFundingProgramCodeListURI = &uri
	case fieldTermsAwardCriteriaTypeCode:
		s.rec.TermsAwardCriteriaTypeCodeListURI = &uri
	case fieldProcessProcedureCode:
		s.rec.ProcessProcedureCodeListURI = &uri
	case fieldProcessUrgencyCode:
		s.rec.ProcessUrgencyCodeListURI = &uri
	}
}

func attrValue(el xml.StartElement, name string) (string, bool) {
	for _, a := range el.Attr {
		if a.Name.Local == name {
			return a.Value, true
		}
	}
	return "", false
}

func hasAttr(el xml.StartElement, name, expected string) bool {
	v, ok := attrValue(el, name)
	return ok && v == expected
}
