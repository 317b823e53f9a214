// Package model defines the core data structures shared by every stage of
// the risk analysis pipeline.
//
// This package contains the following main types:
//   - Document: An annual-report filing after text extraction
//   - RiskSection: The "Item 1A. Risk Factors" span of one Document
//   - Outcome: The tagged per-document result of loading and extraction
//   - WordStat: Frequency and lexical sentiment of one word in one Document
//   - SentenceRecord: Classifier output for one deduplicated sentence
//   - AnalysisResult: Everything a run produced, consumed by report writers
//
// Models live in their own package so that the extractor, aggregators,
// report writers and the history database can share them without import
// cycles. All types serialize to JSON for the summary artifact and the
// history database.
package model
