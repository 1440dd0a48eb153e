package models

type Transaction struct {
	TransactionID string
	ItemName      string
	Quantity      int
}

type Itemset struct {
	Items   []string `json:"items"`
	Support float64  `json:"support"`
	Count   int      `json:"count"`
}

func (s Itemset) Len() int {
	return len(s.Items)
}

type Rule struct {
	Antecedent        []string `json:"antecedent"`
	Consequent        []string `json:"consequent"`
	AntecedentSupport float64  `json:"antecedent_support"`
	ConsequentSupport float64  `json:"consequent_support"`
	Support           float64  `json:"support"`
	Confidence        float64  `json:"confidence"`
	Lift              float64  `json:"lift"`
	Leverage          float64  `json:"leverage"`
}

type ScatterPoint struct {
	Support    float64 `json:"support"`
	Confidence float64 `json:"confidence"`
	Lift       float64 `json:"lift"`
}

type GraphEdge struct {
	From   string  `json:"from"`
	To     string  `json:"to"`
	Weight float64 `json:"weight"`
}

type RuleGraph struct {
	Nodes []string    `json:"nodes"`
	Edges []GraphEdge `json:"edges"`
}
