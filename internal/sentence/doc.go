// Package sentence splits risk sections into sentences, deduplicates them
// across a batch and classifies each unique sentence once.
//
// Sentence boundaries follow Unicode UAX #29. Each sentence is cleaned of
// whitespace runs and leading list markers ("12. ", "B. ") and discarded
// when it has three words or fewer. The cleaned text is the deduplication
// key. The first document in batch order that contains a sentence owns it.
package sentence
