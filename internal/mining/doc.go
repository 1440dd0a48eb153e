// Package mining turns purchase records into a basket presence matrix, mines
// frequent itemsets from it with a level-wise Apriori search and derives scored
// association rules from the result.
//
// Every function in this package is pure: inputs are never mutated and
// outputs are deterministic for a given input, so the service layer can cache
// them keyed on the dataset version and the threshold triple.
//
// Items inside an itemset or rule side are always in ascending lexicographic
// order. The miner relies on that order for prefix joins and the rule
// generator relies on it for support lookups.
package mining
