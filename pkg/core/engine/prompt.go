// Copyright Answer Search Gateway Authors
// SPDX-License-Identifier: Apache-2.0

package engine

import (
	"strings"

	"github.com/answersearch/answersearch-gw/pkg/core/aggregate"
	"github.com/answersearch/answersearch-gw/pkg/core/api"
)

const systemPrompt = `You are an assistant that answers questions using content retrieved from a live web search. Base your answer on the provided sources when they are available, mention the source URL when you draw on it, and acknowledge errors in fetching or parsing web content while still providing the best response possible with the available information.`

const noContextNotice = `No web results were available for this query. Tell the user so in one short sentence, then answer from your own knowledge.`

// buildMessages assembles the prompt for one request. An empty document
// switches to the degraded no-results prompt so the answer is clearly
// labeled for the end user.
func buildMessages(query string, doc aggregate.Document) []api.Message {
	if doc.Empty() {
		return []api.Message{
			{Role: "system", Content: systemPrompt + "\n\n" + noContextNotice},
			{Role: "user", Content: query},
		}
	}

	var sb strings.Builder
	sb.WriteString("Web search results:\n\n")
	sb.WriteString(doc.Render())
	sb.WriteString("\n\nQuestion: ")
	sb.WriteString(query)

	return []api.Message{
		{Role: "system", Content: systemPrompt},
		{Role: "user", Content: sb.String()},
	}
}
