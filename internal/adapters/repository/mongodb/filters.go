package mongodb

import (
	"fmt"
	"regexp"

	"github.com/developia-II/marketplace-backend/internal/core/domain"
	"go.mongodb.org/mongo-driver/bson"
)

// and combines clauses; an empty list matches everything.
func and(clauses bson.A) bson.M {
	switch len(clauses) {
	case 0:
		return bson.M{}
	case 1:
		return clauses[0].(bson.M)
	}
	return bson.M{"$and": clauses}
}

func searchRegex(term string) bson.M {
	return bson.M{"$regex": regexp.QuoteMeta(term), "$options": "i"}
}

func productFilterDoc(filters []domain.ProductFilter) (bson.M, error) {
	clauses := bson.A{}
	for _, f := range filters {
		switch f := f.(type) {
		case domain.ProductVisible:
			// {supplier: null} also matches documents where the field is absent.
			clauses = append(clauses, bson.M{"$or": bson.A{
				bson.M{"supplier": nil},
				bson.M{"approvalStatus": domain.ApprovalApproved},
			}})
		case domain.ProductBySupplier:
			clauses = append(clauses, bson.M{"supplier": f.SupplierID})
		case domain.ProductByApproval:
			clauses = append(clauses, bson.M{"supplier": bson.M{"$ne": nil}, "approvalStatus": f.Status})
		case domain.ProductBySearch:
			if f.Term != "" {
				clauses = append(clauses, bson.M{"name": searchRegex(f.Term)})
			}
		case domain.ProductByCategory:
			if f.Category != "" {
				clauses = append(clauses, bson.M{"category": f.Category})
			}
		case domain.ProductFeatured:
			clauses = append(clauses, bson.M{"isFeatured": true})
		default:
			return nil, fmt.Errorf("unsupported product filter %T", f)
		}
	}
	return and(clauses), nil
}

func orderFilterDoc(filters []domain.OrderFilter) (bson.M, error) {
	clauses := bson.A{}
	for _, f := range filters {
		switch f := f.(type) {
		case domain.OrderActive:
			clauses = append(clauses, bson.M{"$or": bson.A{
				bson.M{"isPaid": false},
				bson.M{"isDelivered": false},
			}})
		case domain.OrderPaidUndelivered:
			clauses = append(clauses, bson.M{"isPaid": true, "isDelivered": false})
		case domain.OrderDelivered:
			clauses = append(clauses, bson.M{"isDelivered": true})
		case domain.OrderByUser:
			clauses = append(clauses, bson.M{"user": f.UserID})
		case domain.OrderBySupplier:
			clauses = append(clauses, bson.M{"orderItems.supplier": f.SupplierID})
		default:
			return nil, fmt.Errorf("unsupported order filter %T", f)
		}
	}
	return and(clauses), nil
}

func supplierFilterDoc(filters []domain.SupplierFilter) (bson.M, error) {
	clauses := bson.A{}
	for _, f := range filters {
		switch f := f.(type) {
		case domain.SupplierByStatus:
			clauses = append(clauses, bson.M{"status": f.Status})
		case domain.SupplierBySearch:
			if f.Term != "" {
				clauses = append(clauses, bson.M{"businessName": searchRegex(f.Term)})
			}
		default:
			return nil, fmt.Errorf("unsupported supplier filter %T", f)
		}
	}
	return and(clauses), nil
}
