// Package ragtools provides the ingestion helpers of a retrieval-augmented
// generation pipeline as a Go library.
//
// Two independent services are exposed:
//   - Chunker turns a tabular file (csv, tsv, xlsx, parquet) into ordered text chunks
//   - WebSearch queries Tavily and flattens the hits into one context string
//
// # Usage
//
//	client, _ := ragtools.New(ragtools.WithTavily(os.Getenv("TAVILY_API_KEY")))
//
//	chunks, err := client.Chunker().Process(ctx, "data/medicines.csv")
//	if errors.Is(err, ragtools.ErrRead) {
//	    // missing or malformed file
//	}
//
//	context := client.WebSearch().Search(ctx, "fever symptoms")
package ragtools
