// Package wayfarer is the embeddable core of the travel knowledge service.
//
// A Client owns an in-memory flat L2 similarity index over travel snippets,
// a retriever that ranks hits by destination and traveller interests, and a
// deterministic risk scorer for budget, weather and crowding.
//
//	client, err := wayfarer.New(wayfarer.WithEmbedder(myEmbedder))
//	if err != nil { ... }
//	defer client.Close()
//
//	err = client.AddDocuments(ctx, docs...)
//	hits, err := client.Retrieve(ctx, wayfarer.Query{Text: "street food", Location: "Bangkok"})
//	risk, err := client.AssessRisk(wayfarer.RiskInput{Budget: 900, Destination: "Tokyo", DurationDays: 3})
//
// The embedder is mandatory for retrieval. Without one every embedding call
// fails with ErrModelUnavailable; no placeholder vectors are produced.
package wayfarer
