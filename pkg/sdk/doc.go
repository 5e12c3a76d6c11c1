// Package queryrules embeds the query rules engine in a Go process.
//
// Rules are stored in Valkey or Redis and applied to Elasticsearch-style
// query documents before they are sent to the search backend:
//
//	client, _ := queryrules.New(ctx, queryrules.WithValkey("localhost:6379", ""))
//	defer client.Close()
//
//	_, _ = client.Rules().Create(ctx, queryrules.Rule{
//	    Title:  "Promote sneakers",
//	    Status: queryrules.StatusPublish,
//	    Triggers: queryrules.TriggerSet{
//	        Condition: queryrules.ConditionAny,
//	        Triggers:  []queryrules.Trigger{{Operator: "contains", Keyword: "shoe"}},
//	    },
//	    Actions: []queryrules.Action{queryrules.Boost("post_type", "equals", "sneaker", 3)},
//	})
//
//	res := client.Augment(ctx, query, "running shoes")
//	// res.Query carries function_score, should and post_filter clauses.
//
// Augment never fails. When rules cannot be read the query is returned unchanged.
package queryrules
