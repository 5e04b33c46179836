package kb

import "corpagent/internal/schema"

// Built-in document type ids.
const (
	TypeArticlesOfAssociation   = "articles_of_association"
	TypeMemorandumOfAssociation = "memorandum_of_association"
	TypeBoardResolution         = "board_resolution"
	TypeShareholderResolution   = "shareholder_resolution"
	TypeUBODeclaration          = "ubo_declaration"
	TypeRegisterMembersDirs     = "register_members_directors"
	TypeEmploymentContract      = "employment_contract"
)

// Built-in process ids.
const (
	ProcessCompanyIncorporation = "company_incorporation"
	ProcessEmploymentOnboarding = "employment_onboarding"
	ProcessArticlesAmendment    = "articles_amendment"
)

// Issue categories emitted by the built-in rule set and by pipeline
// degradation paths.
const (
	CategoryJurisdiction       = "jurisdiction"
	CategoryTemplateCompliance = "template_compliance"
	CategoryEmployment         = "employment"
	CategoryCompleteness       = "completeness"
	CategoryExecution          = "execution"
	CategoryDrafting           = "drafting"
	CategoryClassification     = "classification"
	CategoryProcess            = "process"
)

// ClauseADGMJurisdiction is the canonical governing-law clause suggested for
// jurisdiction findings.
const ClauseADGMJurisdiction = "This document shall be governed by and construed in accordance with the laws of ADGM and the parties irrevocably submit to the exclusive jurisdiction of the ADGM Courts."

// Default returns the built-in ADGM knowledge base. It panics only if the
// built-in dataset itself is malformed, which the package tests guard.
func Default() *KnowledgeBase {
	k, err := New(defaultTypes(), defaultRules(), defaultProcesses(), defaultRegulations())
	if err != nil {
		panic("kb: built-in knowledge base is malformed: " + err.Error())
	}
	return k
}

func defaultTypes() []DocumentTypeSpec {
	return []DocumentTypeSpec{
		{
			ID:   TypeArticlesOfAssociation,
			Name: "Articles of Association",
			Keywords: []KeywordWeight{
				{Term: "articles of association", Weight: 10},
				{Term: "aoa", Weight: 8},
				{Term: "company constitution", Weight: 6},
				{Term: "share capital", Weight: 5},
				{Term: "directors", Weight: 4},
			},
			SectionPatterns: []string{`article\s+\d+`, `clause\s+\d+`, `registered office`},
			MinConfidence:   0.2,
		},
		{
			ID:   TypeMemorandumOfAssociation,
			Name: "Memorandum of Association",
			Keywords: []KeywordWeight{
				{Term: "memorandum of association", Weight: 10},
				{Term: "moa", Weight: 8},
				{Term: "company objectives", Weight: 6},
				{Term: "business activities", Weight: 5},
			},
			SectionPatterns: []string{`objectives`, `activities`, `liability`},
			MinConfidence:   0.2,
		},
		{
			ID:   TypeBoardResolution,
			Name: "Board Resolution",
			Keywords: []KeywordWeight{
				{Term: "board resolution", Weight: 10},
				{Term: "directors resolution", Weight: 8},
				{Term: "board meeting", Weight: 6},
				{Term: "resolved that", Weight: 5, Repeatable: true},
			},
			SectionPatterns: []string{`resolved`, `meeting`, `quorum`},
			MinConfidence:   0.2,
		},
		{
			ID:   TypeShareholderResolution,
			Name: "Shareholder Resolution",
			Keywords: []KeywordWeight{
				{Term: "shareholder resolution", Weight: 10},
				{Term: "written resolution", Weight: 6},
				{Term: "general meeting", Weight: 5},
			},
			SectionPatterns: []string{`resolved`, `shareholders`},
			MinConfidence:   0.2,
		},
		{
			ID:   TypeUBODeclaration,
			Name: "UBO Declaration",
			Keywords: []KeywordWeight{
				{Term: "ubo declaration", Weight: 10},
				{Term: "ultimate beneficial owner", Weight: 10},
				{Term: "beneficial ownership", Weight: 8},
			},
			SectionPatterns: []string{`beneficial`, `ownership`, `control`},
			MinConfidence:   0.2,
		},
		{
			ID:   TypeRegisterMembersDirs,
			Name: "Register of Members and Directors",
			Keywords: []KeywordWeight{
				{Term: "register of members", Weight: 10},
				{Term: "register of directors", Weight: 10},
				{Term: "shareholder register", Weight: 6},
			},
			SectionPatterns: []string{`register`, `members`, `directors`},
			MinConfidence:   0.2,
		},
		{
			ID:   TypeEmploymentContract,
			Name: "Employment Contract",
			Keywords: []KeywordWeight{
				{Term: "employment contract", Weight: 10},
				{Term: "employment agreement", Weight: 8},
				{Term: "service agreement", Weight: 6},
				{Term: "salary", Weight: 4},
				{Term: "termination", Weight: 4},
			},
			SectionPatterns: []string{`employment`, `salary`, `benefits`, `termination`},
			MinConfidence:   0.2,
		},
	}
}

func defaultRules() []RedFlagRule {
	return []RedFlagRule{
		{
			ID:       "jurisdiction-non-adgm",
			Category: CategoryJurisdiction,
			Patterns: []string{
				`UAE Federal Court(?!.*ADGM)`,
				`Dubai Courts(?!.*ADGM)`,
				`courts of (?!ADGM)`,
				`Sharjah Courts`,
				`UAE Civil Code(?!.*ADGM)`,
			},
			Severity:     schema.SeverityCritical,
			Message:      "Document references a non-ADGM jurisdiction",
			Suggestion:   "Replace %q with the ADGM Courts exclusive jurisdiction clause",
			Replacement:  ClauseADGMJurisdiction,
			CitationHint: "ADGM Companies Regulations 2020, Article 6",
		},
		{
			ID:       "template-non-compliance",
			Category: CategoryTemplateCompliance,
			Patterns: []string{
				`company limited by shares(?!.*ADGM)`,
				`governing law(?!.*ADGM)`,
				`registered office(?!.*ADGM)`,
			},
			Severity:     schema.SeverityHigh,
			Message:      "Document does not follow the official ADGM templates",
			Suggestion:   "Align %q with the official ADGM template wording",
			CitationHint: "ADGM official templates and guidance",
		},
		{
			ID:       "employment-non-adgm",
			Category: CategoryEmployment,
			Patterns: []string{
				`UAE Labour Law(?!.*ADGM)`,
				`Ministry of Human Resources(?!.*ADGM)`,
				`Labour Court(?!.*ADGM)`,
				`Federal employment(?!.*ADGM)`,
			},
			Severity:     schema.SeverityHigh,
			Message:      "Employment document references non-ADGM employment law",
			Suggestion:   "Replace %q with a reference to the ADGM Employment Regulations 2019",
			Replacement:  "Any dispute arising from this employment contract shall be subject to the exclusive jurisdiction of the ADGM Courts and the ADGM Employment Regulations 2019.",
			CitationHint: "ADGM Employment Regulations 2019, Article 8",
		},
		{
			ID:       "incomplete-clauses",
			Category: CategoryCompleteness,
			Patterns: []string{
				`to be determined`,
				`\bTBD\b`,
				`\[[^\]]*\]`,
				`insert\s+\w+`,
				`\.{4,}`,
				`awaiting confirmation`,
			},
			Severity:   schema.SeverityMedium,
			Message:    "Incomplete or placeholder text found; all clauses must be completed",
			Suggestion: "Complete the placeholder %q with the final agreed content",
		},
		{
			ID:       "missing-signatures",
			Category: CategoryExecution,
			Patterns: []string{
				`(?m)signature:\s*$`,
				`(?m)signed:\s*$`,
				`(?m)director:\s*$`,
				`(?m)witness:\s*$`,
				`(?m)date:\s*$`,
			},
			Severity:     schema.SeverityHigh,
			Message:      "Missing or incomplete signature/execution block",
			Suggestion:   "Complete the execution block with signatory name, capacity, and date",
			CitationHint: "ADGM Companies Regulations 2020, Article 15",
		},
		{
			ID:       "ambiguous-language",
			Category: CategoryDrafting,
			Patterns: []string{
				`may or may not`,
				`at the discretion`,
				`as deemed appropriate`,
				`as mutually agreed`,
				`to the extent possible`,
			},
			Severity:   schema.SeverityLow,
			Message:    "Ambiguous or non-binding language detected",
			Suggestion: "Replace %q with definitive, binding wording",
		},
	}
}

func defaultProcesses() []ProcessSpec {
	return []ProcessSpec{
		{
			ID:   ProcessCompanyIncorporation,
			Name: "Company Incorporation",
			RequiredDocTypes: []string{
				TypeArticlesOfAssociation,
				TypeMemorandumOfAssociation,
				TypeBoardResolution,
				TypeUBODeclaration,
				TypeRegisterMembersDirs,
			},
			OptionalDocTypes: []string{TypeShareholderResolution},
		},
		{
			ID:               ProcessEmploymentOnboarding,
			Name:             "Employment Onboarding",
			RequiredDocTypes: []string{TypeEmploymentContract},
		},
		{
			ID:   ProcessArticlesAmendment,
			Name: "Amendment of Articles",
			RequiredDocTypes: []string{
				TypeShareholderResolution,
				TypeArticlesOfAssociation,
			},
			OptionalDocTypes: []string{TypeBoardResolution},
		},
	}
}

func defaultRegulations() []RegulationEntry {
	return []RegulationEntry{
		{
			ID:             "companies-2020-art-6",
			Excerpt:        "A document governed by ADGM law must provide that disputes are subject to the exclusive jurisdiction of the ADGM Courts; references to other courts or federal jurisdiction are not compliant.",
			Categories:     []string{CategoryJurisdiction, CategoryTemplateCompliance},
			SourceCitation: "ADGM Companies Regulations 2020, Article 6",
		},
		{
			ID:             "companies-2020-art-15",
			Excerpt:        "Incorporation documents must be executed by each subscriber with signature, printed name, capacity, and date; unexecuted documents are not accepted for registration.",
			Categories:     []string{CategoryExecution, CategoryCompleteness},
			SourceCitation: "ADGM Companies Regulations 2020, Article 15",
		},
		{
			ID:             "companies-2020-art-23",
			Excerpt:        "Directors owe duties to act within powers and exercise independent judgment; board resolutions must record the directors present and the resolutions passed.",
			Categories:     []string{CategoryExecution, CategoryProcess},
			SourceCitation: "ADGM Companies Regulations 2020, Article 23",
		},
		{
			ID:             "companies-2020-art-52",
			Excerpt:        "Every company must maintain a register of members and a register of directors at its registered office and keep them available for inspection.",
			Categories:     []string{CategoryProcess, CategoryClassification},
			SourceCitation: "ADGM Companies Regulations 2020, Article 52",
		},
		{
			ID:             "companies-2020-art-67",
			Excerpt:        "Board and shareholder resolutions must state the resolution text, the quorum present, and the votes cast, and be signed by the chair of the meeting.",
			Categories:     []string{CategoryExecution, CategoryProcess},
			SourceCitation: "ADGM Companies Regulations 2020, Article 67",
		},
		{
			ID:             "employment-2019-art-8",
			Excerpt:        "An employment contract must be in writing and state salary, benefits, working hours, notice periods, and termination procedures in accordance with the ADGM Employment Regulations.",
			Categories:     []string{CategoryEmployment, CategoryCompleteness},
			SourceCitation: "ADGM Employment Regulations 2019, Article 8",
		},
		{
			ID:             "employment-2019-art-28",
			Excerpt:        "Employment disputes fall under the jurisdiction of the ADGM Courts; contracts must not designate federal labour courts or the Ministry of Human Resources.",
			Categories:     []string{CategoryEmployment, CategoryJurisdiction},
			SourceCitation: "ADGM Employment Regulations 2019, Article 28",
		},
		{
			ID:             "dp-2021-art-35",
			Excerpt:        "Controllers must maintain a data protection policy document describing processing purposes, lawful bases, and retention periods.",
			Categories:     []string{CategoryCompleteness},
			SourceCitation: "ADGM Data Protection Regulations 2021, Article 35",
		},
		{
			ID:             "drafting-guidance",
			Excerpt:        "Clauses must be definitive and binding; discretionary or placeholder wording such as to be determined undermines enforceability and should be replaced with agreed terms.",
			Categories:     []string{CategoryDrafting, CategoryCompleteness},
			SourceCitation: "ADGM legal drafting guidance",
		},
	}
}
