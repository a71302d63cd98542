// Package symcheck provides rule-based symptom triage: it extracts canonical
// symptom keywords from a free-text complaint, scores every condition of a
// knowledge base against them, and derives a three-tier urgency verdict
// (self_care, see_gp, urgent).
//
// It is not a diagnostic tool. Verdicts are advisory triage hints driven
// entirely by the supplied knowledge base.
//
// # Embedded use — in-process client
//
//	kb, _ := symcheck.NewKB().
//	    Synonym("high temperature", "fever").
//	    RedFlag("difficulty breathing").
//	    Condition("Flu",
//	        symcheck.Required("fever", "cough"),
//	        symcheck.Supporting("fatigue"),
//	        symcheck.WithUrgency(symcheck.SeeGP),
//	    ).
//	    Build()
//
//	client, _ := symcheck.New(symcheck.WithKB(kb))
//	defer client.Close()
//
//	report, _ := client.Assess(ctx, symcheck.Input{
//	    Text: "I have a fever and a bad cough",
//	})
//	fmt.Println(report.Urgency, report.TopConditions[0].Condition)
//
// # Shared sessions — Redis-backed store
//
//	client, _ := symcheck.New(
//	    symcheck.WithKBFile("kb/mapping.yaml"),
//	    symcheck.WithRedis("localhost:6379", ""),
//	    symcheck.WithSessionTTL(24*time.Hour),
//	)
//
// The HTTP service in cmd/symcheck exposes the same pipeline over a JSON
// API; reports exported by either surface share one wire format.
package symcheck
