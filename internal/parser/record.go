package parser

// ProjectLot is one ProcurementProjectLot within a contract folder.
type ProjectLot struct {
	ID                  *string `parquet:"name=lot_id, type=BYTE_ARRAY, convertedtype=UTF8, repetitiontype=OPTIONAL"`
	Name                *string `parquet:"name=lot_name, type=BYTE_ARRAY, convertedtype=UTF8, repetitiontype=OPTIONAL"`
	TotalAmount         *string `parquet:"name=lot_total_amount, type=BYTE_ARRAY, convertedtype=UTF8, repetitiontype=OPTIONAL"`
	TotalCurrency       *string `parquet:"name=lot_total_currency, type=BYTE_ARRAY, convertedtype=UTF8, repetitiontype=OPTIONAL"`
	TaxExclusiveAmount  *string `parquet:"name=lot_tax_exclusive_amount, type=BYTE_ARRAY, convertedtype=UTF8, repetitiontype=OPTIONAL"`
	TaxExclusiveCurrency *string `parquet:"name=lot_tax_exclusive_currency, type=BYTE_ARRAY, convertedtype=UTF8, repetitiontype=OPTIONAL"`
	CPVCode             *string `parquet:"name=lot_cpv_code, type=BYTE_ARRAY, convertedtype=UTF8, repetitiontype=OPTIONAL"`
	CPVCodeListURI      *string `parquet:"name=lot_cpv_code_list_uri, type=BYTE_ARRAY, convertedtype=UTF8, repetitiontype=OPTIONAL"`
	CountryCode         *string `parquet:"name=lot_country_code, type=BYTE_ARRAY, convertedtype=UTF8, repetitiontype=OPTIONAL"`
	CountryCodeListURI  *string `parquet:"name=lot_country_code_list_uri, type=BYTE_ARRAY, convertedtype=UTF8, repetitiontype=OPTIONAL"`
}

// TenderResult is one TenderResult element, already fanned out per
// awarded lot. ResultID is the 1-based sequence number assigned in
// document order within a single ContractFolderStatus subtree;
// ResultLotID is the awarded lot's id, or "0" when the result names no
// lot.
type TenderResult struct {
	ResultID             *string `parquet:"name=result_id, type=BYTE_ARRAY, convertedtype=UTF8, repetitiontype=OPTIONAL"`
	ResultCode           *string `parquet:"name=result_code, type=BYTE_ARRAY, convertedtype=UTF8, repetitiontype=OPTIONAL"`
	ResultCodeListURI    *string `parquet:"name=result_code_list_uri, type=BYTE_ARRAY, convertedtype=UTF8, repetitiontype=OPTIONAL"`
	Description          *string `parquet:"name=result_description, type=BYTE_ARRAY, convertedtype=UTF8, repetitiontype=OPTIONAL"`
	WinningParty         *string `parquet:"name=result_winning_party, type=BYTE_ARRAY, convertedtype=UTF8, repetitiontype=OPTIONAL"`
	SMEAwardedIndicator  *string `parquet:"name=result_sme_awarded_indicator, type=BYTE_ARRAY, convertedtype=UTF8, repetitiontype=OPTIONAL"`
	AwardDate            *string `parquet:"name=result_award_date, type=BYTE_ARRAY, convertedtype=UTF8, repetitiontype=OPTIONAL"`
	TaxExclusiveAmount   *string `parquet:"name=result_tax_exclusive_amount, type=BYTE_ARRAY, convertedtype=UTF8, repetitiontype=OPTIONAL"`
	TaxExclusiveCurrency *string `parquet:"name=result_tax_exclusive_currency, type=BYTE_ARRAY, convertedtype=UTF8, repetitiontype=OPTIONAL"`
	PayableAmount        *string `parquet:"name=result_payable_amount, type=BYTE_ARRAY, convertedtype=UTF8, repetitiontype=OPTIONAL"`
	PayableCurrency      *string `parquet:"name=result_payable_currency, type=BYTE_ARRAY, convertedtype=UTF8, repetitiontype=OPTIONAL"`
	ResultLotID          *string `parquet:"name=result_lot_id, type=BYTE_ARRAY, convertedtype=UTF8, repetitiontype=OPTIONAL"`
}

// ContractFolderRecord is the flattened output row: the Atom entry's
// metadata plus everything extracted from its ContractFolderStatus
// subtree. One record per feed entry.
type ContractFolderRecord struct {
	EntryID      *string `parquet:"name=id, type=BYTE_ARRAY, convertedtype=UTF8, repetitiontype=OPTIONAL"`
	EntryTitle   *string `parquet:"name=title, type=BYTE_ARRAY, convertedtype=UTF8, repetitiontype=OPTIONAL"`
	EntrySummary *string `parquet:"name=summary, type=BYTE_ARRAY, convertedtype=UTF8, repetitiontype=OPTIONAL"`
	EntryUpdated *string `parquet:"name=updated, type=BYTE_ARRAY, convertedtype=UTF8, repetitiontype=OPTIONAL"`
	EntryLink    *string `parquet:"name=link, type=BYTE_ARRAY, convertedtype=UTF8, repetitiontype=OPTIONAL"`

	StatusCode        *string `parquet:"name=status_code, type=BYTE_ARRAY, convertedtype=UTF8, repetitiontype=OPTIONAL"`
	StatusCodeListURI *string `parquet:"name=status_code_list_uri, type=BYTE_ARRAY, convertedtype=UTF8, repetitiontype=OPTIONAL"`
	ContractID        *string `parquet:"name=contract_id, type=BYTE_ARRAY, convertedtype=UTF8, repetitiontype=OPTIONAL"`

	ContractingPartyName               *string `parquet:"name=contracting_party_name, type=BYTE_ARRAY, convertedtype=UTF8, repetitiontype=OPTIONAL"`
	ContractingPartyWebsite            *string `parquet:"name=contracting_party_website, type=BYTE_ARRAY, convertedtype=UTF8, repetitiontype=OPTIONAL"`
	ContractingPartyTypeCode           *string `parquet:"name=contracting_party_type_code, type=BYTE_ARRAY, convertedtype=UTF8, repetitiontype=OPTIONAL"`
	ContractingPartyTypeCodeListURI    *string `parquet:"name=contracting_party_type_code_list_uri, type=BYTE_ARRAY, convertedtype=UTF8, repetitiontype=OPTIONAL"`
	ContractingPartyActivityCode       *string `parquet:"name=contracting_party_activity_code, type=BYTE_ARRAY, convertedtype=UTF8, repetitiontype=OPTIONAL"`
	ContractingPartyActivityCodeListURI *string `parquet:"name=contracting_party_activity_code_list_uri, type=BYTE_ARRAY, convertedtype=UTF8, repetitiontype=OPTIONAL"`
	ContractingPartyCity               *string `parquet:"name=contracting_party_city, type=BYTE_ARRAY, convertedtype=UTF8, repetitiontype=OPTIONAL"`
	ContractingPartyZip                *string `parquet:"name=contracting_party_zip, type=BYTE_ARRAY, convertedtype=UTF8, repetitiontype=OPTIONAL"`
	ContractingPartyCountryCode        *string `parquet:"name=contracting_party_country_code, type=BYTE_ARRAY, convertedtype=UTF8, repetitiontype=OPTIONAL"`
	ContractingPartyCountryCodeListURI *string `parquet:"name=contracting_party_country_code_list_uri, type=BYTE_ARRAY, convertedtype=UTF8, repetitiontype=OPTIONAL"`

	ProjectName                *string `parquet:"name=project_name, type=BYTE_ARRAY, convertedtype=UTF8, repetitiontype=OPTIONAL"`
	ProjectTypeCode            *string `parquet:"name=project_type_code, type=BYTE_ARRAY, convertedtype=UTF8, repetitiontype=OPTIONAL"`
	ProjectTypeCodeListURI     *string `parquet:"name=project_type_code_list_uri, type=BYTE_ARRAY, convertedtype=UTF8, repetitiontype=OPTIONAL"`
	ProjectSubTypeCode         *string `parquet:"name=project_sub_type_code, type=BYTE_ARRAY, convertedtype=UTF8, repetitiontype=OPTIONAL"`
	ProjectSubTypeCodeListURI  *string `parquet:"name=project_sub_type_code_list_uri, type=BYTE_ARRAY, convertedtype=UTF8, repetitiontype=OPTIONAL"`
	ProjectTotalAmount         *string `parquet:"name=project_total_amount, type=BYTE_ARRAY, convertedtype=UTF8, repetitiontype=OPTIONAL"`
	ProjectTotalCurrency       *string `parquet:"name=project_total_currency, type=BYTE_ARRAY, convertedtype=UTF8, repetitiontype=OPTIONAL"`
	ProjectTaxExclusiveAmount  *string `parquet:"name=project_tax_exclusive_amount, type=BYTE_ARRAY, convertedtype=UTF8, repetitiontype=OPTIONAL"`
	ProjectTaxExclusiveCurrency *string `parquet:"name=project_tax_exclusive_currency, type=BYTE_ARRAY, convertedtype=UTF8, repetitiontype=OPTIONAL"`
	ProjectCPVCode             *string `parquet:"name=project_cpv_code, type=BYTE_ARRAY, convertedtype=UTF8, repetitiontype=OPTIONAL"`
	ProjectCPVCodeListURI      *string `parquet:"name=project_cpv_code_list_uri, type=BYTE_ARRAY, convertedtype=UTF8, repetitiontype=OPTIONAL"`
	ProjectCountryCode         *string `parquet:"name=project_country_code, type=BYTE_ARRAY, convertedtype=UTF8, repetitiontype=OPTIONAL"`
	ProjectCountryCodeListURI  *string `parquet:"name=project_country_code_list_uri, type=BYTE_ARRAY, convertedtype=UTF8, repetitiontype=OPTIONAL"`

	ProjectLots   []ProjectLot   `parquet:"name=project_lots, repetitiontype=REPEATED"`
	TenderResults []TenderResult `parquet:"name=tender_results, repetitiontype=REPEATED"`

	TermsFundingProgramCode           *string `parquet:"name=terms_funding_program_code, type=BYTE_ARRAY, convertedtype=UTF8, repetitiontype=OPTIONAL"`
	TermsFundingProgramCodeListURI    *string `parquet:"name=terms_funding_program_code_list_uri, type=BYTE_ARRAY, convertedtype=UTF8, repetitiontype=OPTIONAL"`
	TermsAwardCriteriaTypeCode        *string `parquet:"name=terms_award_criteria_type_code, type=BYTE_ARRAY, convertedtype=UTF8, repetitiontype=OPTIONAL"`
	TermsAwardCriteriaTypeCodeListURI *string `parquet:"name=terms_award_criteria_type_code_list_uri, type=BYTE_ARRAY, convertedtype=UTF8, repetitiontype=OPTIONAL"`

	ProcessEndDate              *string `parquet:"name=process_end_date, type=BYTE_ARRAY, convertedtype=UTF8, repetitiontype=OPTIONAL"`
	ProcessProcedureCode        *string `parquet:"name=process_procedure_code, type=BYTE_ARRAY, convertedtype=UTF8, repetitiontype=OPTIONAL"`
	ProcessProcedureCodeListURI *string `parquet:"name=process_procedure_code_list_uri, type=BYTE_ARRAY, convertedtype=UTF8, repetitiontype=OPTIONAL"`
	ProcessUrgencyCode          *string `parquet:"name=process_urgency_code, type=BYTE_ARRAY, convertedtype=UTF8, repetitiontype=OPTIONAL"`
	ProcessUrgencyCodeListURI   *string `parquet:"name=process_urgency_code_list_uri, type=BYTE_ARRAY, convertedtype=UTF8, repetitiontype=OPTIONAL"`

	CFSRawXML *string `parquet:"name=cfs_raw_xml, type=BYTE_ARRAY, convertedtype=UTF8, repetitiontype=OPTIONAL"`
}
