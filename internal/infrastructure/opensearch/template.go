// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package opensearch

const fetchDocumentsSource = `{
  "size": {{ .Size }},
  "sort": [
    {
      {{ .SortField | json }}: {"order": "desc"}
    }
  ],
  "query": {"match_all": {}}
}`

const searchDocumentsSource = `{
  "size": {{ .Size }},
  "query": {{ if .Query }}{{ .Query }}{{ else }}{"match_all": {}}{{ end }}
  {{- if .SearchAfter }},
  "search_after": {{ .SearchAfter }}
  {{- end }},
  "sort": [
    {
      {{ .SortField | json }}: {"order": "desc"}
    },
    {"_id": "asc"}
  ]
}`

const suggestSource = `{
  "suggest": {
    {{ .SuggestionName | json }}: {
      "text": {{ .Text | json }},
      "completion": {
        "field": {{ .SuggestField | json }},
        "fuzzy": true
      }
    }
  }
}`
