// Package research provides the research assistant's tools: web search,
// Wikipedia lookup and appending findings to a text file.
package research
