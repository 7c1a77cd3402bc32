package agent

import (
	"github.com/PaulCrtr/cart-ai/model"
	"github.com/PaulCrtr/cart-ai/tool"
)

// Built-in role names.
const (
	ResearcherName  = "researcher"
	CartHandlerName = "cart_handler"
)

// SupervisorInstruction is the router preamble for the shopping cart roles.
const SupervisorInstruction = "You are the supervisor of a shopping cart tool. You oversee two workers: " +
	"'researcher': searches for products on the Internet. " +
	"'cart_handler': manages the shopping cart (add, remove, read). " +
	"Your job is to route tasks to the appropriate worker. " +
	"If the request involves adding a product, the researcher agent must always be called first."

// ResearcherInstruction drives the product search worker.
const ResearcherInstruction = "You're a web researcher. You may use the Tavily search engine to search the web for a product. " +
	"Make sure to search for a product (not articles, comparison sites, or anything else). " +
	"If you don't have a lot of information about a product, do the search anyway. " +
	"Always run a single search. " +
	"Don't worry about adding it to the cart; another agent is responsible for saving the information you return."

// CartHandlerInstruction drives the cart worker. MaxItems renders the
// per-turn limit clause when positive.
const CartHandlerInstruction = "You manage a shopping cart in JSON format with three tools: add, remove, and read " +
	"(use it only if the only request is to display the cart, otherwise tools will return the list). " +
	"Products to add are provided by a researcher agent and must include a name and URL. " +
	"Do not infer or create substitutes. " +
	"If you receive several products, choose the one that most closely resembles a sales item. " +
	"For ambiguous deletion requests (e.g., \"remove the tree\"), first look for items with matching names, IDs, URLs. " +
	"Always provide the product name and url after adding it." +
	"{{if gt .MaxItems 0}} Never add more than {{.MaxItems}} item(s) per request.{{end}}"

// NewResearcher builds the worker that searches the web for products.
// tools is normally the single search tool.
func NewResearcher(llm model.Model, tools []tool.Tool, optFns ...func(o *WorkerOptions)) (*Worker, error) {
	return NewWorker(ResearcherName, llm, append([]func(o *WorkerOptions){
		func(o *WorkerOptions) {
			o.Instruction = NewInstructionFromText(ResearcherInstruction)
			o.Tools = tools
		},
	}, optFns...)...)
}

// NewCartHandler builds the worker that reads and mutates the cart.
func NewCartHandler(llm model.Model, tools []tool.Tool, optFns ...func(o *WorkerOptions)) (*Worker, error) {
	return NewWorker(CartHandlerName, llm, append([]func(o *WorkerOptions){
		func(o *WorkerOptions) {
			o.Instruction = NewInstructionFromText(CartHandlerInstruction)
			o.Tools = tools
		},
	}, optFns...)...)
}

// NewSupervisor builds the router over the built-in roles.
func NewSupervisor(llm model.Model, optFns ...func(o *RouterOptions)) (*Router, error) {
	return NewRouter(llm, []string{CartHandlerName, ResearcherName}, append([]func(o *RouterOptions){
		func(o *RouterOptions) { o.Instruction = NewInstructionFromText(SupervisorInstruction) },
	}, optFns...)...)
}
