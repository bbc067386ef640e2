package shopify

// ordersQuery pulls orders with the money, transaction and refund fields used
// by reconciliation and refund analysis.
const ordersQuery = `query Orders($first: Int!, $cursor: String, $queryString: String!) {
  orders(first: $first, after: $cursor, query: $queryString, sortKey: CREATED_AT) {
    pageInfo { hasNextPage endCursor }
    edges {
      node {
        id
        name
        sourceName
        retailLocation { id name }
        createdAt
        processedAt
        displayFinancialStatus
        displayFulfillmentStatus
        currencyCode
        totalPriceSet { presentmentMoney { amount currencyCode } }
        totalTaxSet { presentmentMoney { amount currencyCode } }
        totalShippingPriceSet { presentmentMoney { amount currencyCode } }
        totalRefundedSet { presentmentMoney { amount currencyCode } }
        subtotalPriceSet { presentmentMoney { amount currencyCode } }
        totalTipReceivedSet { presentmentMoney { amount currencyCode } }
        totalReceivedSet { presentmentMoney { amount currencyCode } }
        totalDiscountsSet { presentmentMoney { amount currencyCode } }
        netPaymentSet { presentmentMoney { amount currencyCode } }
        totalOutstandingSet { presentmentMoney { amount currencyCode } }
        transactions(first: 50) {
          id
          kind
          gateway
          status
          createdAt
          processedAt
          test
          amountSet { presentmentMoney { amount currencyCode } }
        }
        refunds {
          id
          createdAt
          note
          totalRefundedSet { presentmentMoney { amount currencyCode } }
          refundLineItems(first: 50) {
            nodes {
              id
              quantity
              subtotalSet { presentmentMoney { amount currencyCode } }
            }
          }
          transactions(first: 50) {
            nodes {
              id
              kind
              gateway
              status
              createdAt
              processedAt
              test
              amountSet { presentmentMoney { amount currencyCode } }
            }
          }
        }
      }
    }
  }
}`
