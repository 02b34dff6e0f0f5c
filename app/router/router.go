package router

import (
	"net/http"
	"strings"

	"imprenta-studio/app/controller"
)

type Controllers struct {
	Product    *controller.ProductController
	Order      *controller.OrderController
	DesignFile *controller.DesignFileController
	Proof      *controller.ProofController
}

// pingHandler handles GET /ping
func pingHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}

func SetupRoutes(controllers *Controllers) {
	// Ping endpoint
	http.HandleFunc("/ping", pingHandler)

	// Product catalog routes
	http.HandleFunc("/products", controllers.Product.ListProducts)

	// Product detail and quote (dispatch on suffix before treating the
	// path as a slug)
	http.HandleFunc("/products/", func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/quote") {
			controllers.Product.Quote(w, r)
			return
		}
		if r.Method == http.MethodGet {
			controllers.Product.GetProduct(w, r)
			return
		}
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	})

	// Order submission
	http.HandleFunc("/orders", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			controllers.Order.SubmitOrder(w, r)
		} else {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	})

	// Order actions (specific suffixes first, then the generic /:id route)
	http.HandleFunc("/orders/", func(w http.ResponseWriter, r *http.Request) {
		path := strings.TrimPrefix(r.URL.Path, "/orders/")

		if strings.HasSuffix(path, "/confirm") {
			controllers.Order.ConfirmPayment(w, r)
			return
		}
		if strings.HasSuffix(path, "/proof/render") {
			controllers.Proof.RenderProofHTML(w, r)
			return
		}
		if strings.HasSuffix(path, "/proof") {
			controllers.Proof.GetProofPDF(w, r)
			return
		}
		// Handle GET /orders/:orderId/files/:fileId/preview
		if strings.Contains(path, "/files/") && strings.HasSuffix(path, "/preview") {
			controllers.DesignFile.GetPreview(w, r)
			return
		}
		// Handle POST /orders/:id/files
		if strings.HasSuffix(path, "/files") && r.Method == http.MethodPost {
			controllers.DesignFile.AttachFile(w, r)
			return
		}

		// Otherwise, treat as GET /orders/:id
		if r.Method == http.MethodGet && !strings.Contains(path, "/") {
			controllers.Order.GetOrder(w, r)
			return
		}

		http.Error(w, "Not found", http.StatusNotFound)
	})
}
